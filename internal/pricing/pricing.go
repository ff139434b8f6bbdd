package pricing

// Config holds the pricing constants applied to every cart and order.
// Delivery is free above the threshold, otherwise the flat fee applies.
type Config struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	TaxRate               float64
}

func DefaultConfig() Config {
	return Config{
		FreeDeliveryThreshold: 200,
		DeliveryFee:           40,
		TaxRate:               0.05,
	}
}

// Line is the minimal shape the calculator needs from a cart or order line.
type Line struct {
	UnitPrice float64
	Quantity  int
}

type Totals struct {
	Subtotal    float64
	DeliveryFee float64
	Tax         float64
	Total       float64
}

// Calculate derives subtotal, delivery fee, tax and total from the given
// lines. It is pure: the same lines always produce the same totals, and the
// line order does not matter.
func (c Config) Calculate(lines []Line) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}

	var deliveryFee float64
	if subtotal > c.FreeDeliveryThreshold {
		deliveryFee = 0
	} else {
		deliveryFee = c.DeliveryFee
	}

	tax := subtotal * c.TaxRate

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		Total:       subtotal + deliveryFee + tax,
	}
}
