// Package investorlens is the search and ranking core behind the
// InvestorLens company research tool. It turns natural-language questions
// about companies into typed queries, retrieves candidates from a
// relationship graph, and produces persona-weighted, explainable rankings.
//
// The main entry point is Client, built over a driver.GraphDriver:
//
//	d, _ := driver.NewMemoryDriverFromFile("data/companies.yaml")
//	client, _ := investorlens.New(ctx, d)
//	resp, err := client.Search(ctx, "Who competes with Snowflake?", "value_investor", false)
//
// The same query against the same graph always yields the same ranking,
// and every composite score can be reproduced from its breakdown.
package investorlens
