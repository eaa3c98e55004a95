package metrics

// ScoreItems sums the item scores when every item is answered and returns
// nil otherwise. The same gate applies to both instruments.
func ScoreItems(items []*int) *int {
	if items == nil {
		return nil
	}
	total := 0
	for _, s := range items {
		if s == nil {
			return nil
		}
		total += *s
	}
	return &total
}

// CombinedTotal returns a+b only when both totals are defined.
func CombinedTotal(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	sum := *a + *b
	return &sum
}
