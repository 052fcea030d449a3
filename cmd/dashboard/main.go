// Command dashboard sirve el dashboard de supply-chain y permite disparar ejecuciones
// del backend desde la línea de comandos.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Dashboard de supply-chain: estado de ejecuciones, inventario, órdenes y SLA",
		Long: `Cliente del backend de supply-chain. Dispara ejecuciones del job, sigue su log
por server-sent events y reconcilia los modelos de lectura cuando la ejecución termina.`,
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP del dashboard",
		RunE:  runServe,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Dispara una ejecución, imprime su log y el resumen reconciliado",
		RunE:  runOnce,
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Genera un token JWT de operador para POST /api/run",
		RunE:  runToken,
	}

	strategyFlag string
	operatorFlag string
	roleFlag     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFlag, "strategy", "",
		"estrategia de reconciliación (pull | push); por defecto RECONCILE_STRATEGY")

	tokenCmd.Flags().StringVar(&operatorFlag, "operator", "", "identificador del operador")
	tokenCmd.Flags().StringVar(&roleFlag, "role", "operator", "rol del token (operator | viewer)")
	_ = tokenCmd.MarkFlagRequired("operator")

	rootCmd.AddCommand(serveCmd, runCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
