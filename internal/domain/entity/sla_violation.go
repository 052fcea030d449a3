package entity

// SLAViolation incumplimiento de SLA reportado para una orden.
// order_id no es único: una orden puede incumplir más de una vez.
type SLAViolation struct {
	OrderID    string `json:"order_id"`
	Supplier   string `json:"supplier"`
	Reason     string `json:"reason"`
	ReportedOn string `json:"reported_on"`
}

// SLAViolationKey identidad de un incumplimiento: (order_id, reported_on).
type SLAViolationKey struct {
	OrderID    string
	ReportedOn string
}

// Key devuelve la identidad compuesta del incumplimiento.
func (v SLAViolation) Key() SLAViolationKey {
	return SLAViolationKey{OrderID: v.OrderID, ReportedOn: v.ReportedOn}
}
