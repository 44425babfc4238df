package search

// Build renders a query plan in the given dialect. Empty blocks are
// skipped so a sparse plan still yields a usable query.
func Build(d Dialect, plan QueryPlan) string {
	groups := make([]string, 0, len(plan.Blocks))
	for _, block := range plan.Blocks {
		terms := make([]string, 0, len(block.Terms))
		for _, t := range block.Terms {
			if t.Text == "" {
				continue
			}
			terms = append(terms, d.FormatTerm(t))
		}
		if group := d.JoinOR(terms); group != "" {
			groups = append(groups, group)
		}
	}
	return d.JoinAND(groups)
}

// BuildFor renders a query plan for a database by name.
func BuildFor(database string, plan QueryPlan) (string, error) {
	d, err := DialectFor(database)
	if err != nil {
		return "", err
	}
	return Build(d, plan), nil
}
