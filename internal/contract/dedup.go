package contract

// dedupStrings склеивает списки и убирает дубликаты, сохраняя порядок
// первого вхождения. Результат стабилен для одинаковых входов - это
// основа идемпотентности компиляции.
func dedupStrings(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
