package types

// QtyEpsilon is the tolerance for quantity comparisons. Quantities are
// float64, so equality checks go through this threshold everywhere.
const QtyEpsilon = 1e-9

// QtyIsZero reports whether q is zero within tolerance.
func QtyIsZero(q float64) bool {
	return q < QtyEpsilon && q > -QtyEpsilon
}

// QtyEqual reports whether a and b differ by less than the tolerance.
func QtyEqual(a, b float64) bool {
	return QtyIsZero(a - b)
}
