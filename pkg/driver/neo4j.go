package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/zeus1292/investorlens/pkg/types"
)

// Neo4jDriver reads the relationship graph from a Neo4j database. The
// graph is written by the external build pipeline; this driver never
// mutates it.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver connects to a Neo4j instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jDriver{client: client, database: database}, nil
}

// VerifyConnectivity checks the connection is usable.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// GetCompany implements GraphDriver.
func (n *Neo4jDriver) GetCompany(ctx context.Context, id string) (types.Company, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Company {company_id: $id})
			RETURN c
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: %s", types.ErrCompanyNotFound, id)
		}
		value, _ := records[0].Get("c")
		node, ok := value.(dbtype.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected type for company node: %T", value)
		}
		return companyFromNode(node), nil
	})
	if err != nil {
		return types.Company{}, err
	}
	return result.(types.Company), nil
}

// ListCompanies implements GraphDriver.
func (n *Neo4jDriver) ListCompanies(ctx context.Context) ([]types.Company, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Company)
			RETURN c
			ORDER BY c.company_id
		`, nil)
		if err != nil {
			return nil, err
		}
		var companies []types.Company
		for res.Next(ctx) {
			value, _ := res.Record().Get("c")
			node, ok := value.(dbtype.Node)
			if !ok {
				continue
			}
			companies = append(companies, companyFromNode(node))
		}
		return companies, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Company), nil
}

// Neighbors implements GraphDriver.
func (n *Neo4jDriver) Neighbors(ctx context.Context, id string, edgeTypes []types.EdgeType) ([]types.Edge, error) {
	typeNames := make([]string, 0, len(edgeTypes))
	for _, et := range edgeTypes {
		typeNames = append(typeNames, string(et))
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Company {company_id: $id})-[r]-(t:Company)
			WHERE size($types) = 0 OR type(r) IN $types
			RETURN startNode(r).company_id AS source,
			       endNode(r).company_id AS target,
			       type(r) AS rel_type,
			       coalesce(r.strength, 0.0) AS strength
		`, map[string]any{"id": id, "types": typeNames})
		if err != nil {
			return nil, err
		}
		return collectEdges(ctx, res, id)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Edge), nil
}

// EdgesBetween implements GraphDriver.
func (n *Neo4jDriver) EdgesBetween(ctx context.Context, a, b string) ([]types.Edge, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Company {company_id: $a})-[r]-(b:Company {company_id: $b})
			RETURN startNode(r).company_id AS source,
			       endNode(r).company_id AS target,
			       type(r) AS rel_type,
			       coalesce(r.strength, 0.0) AS strength
		`, map[string]any{"a": a, "b": b})
		if err != nil {
			return nil, err
		}
		return collectEdges(ctx, res, a)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Edge), nil
}

// CommonNeighbors implements GraphDriver.
func (n *Neo4jDriver) CommonNeighbors(ctx context.Context, a, b string, edgeType types.EdgeType) ([]string, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Company {company_id: $a})-[r1]-(common:Company)-[r2]-(b:Company {company_id: $b})
			WHERE type(r1) = $type AND type(r2) = $type
			  AND common.company_id <> $a AND common.company_id <> $b
			RETURN DISTINCT common.company_id AS id
			ORDER BY id
		`, map[string]any{"a": a, "b": b, "type": string(edgeType)})
		if err != nil {
			return nil, err
		}
		var ids []string
		for res.Next(ctx) {
			value, _ := res.Record().Get("id")
			if s, ok := value.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// PartnerCounts implements GraphDriver.
func (n *Neo4jDriver) PartnerCounts(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil
	}
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Company)-[:PARTNERS_WITH]-(t:Company)
			WHERE c.company_id IN $ids
			RETURN c.company_id AS id, count(DISTINCT t.company_id) AS partners
		`, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int)
		for res.Next(ctx) {
			rec := res.Record()
			idValue, _ := rec.Get("id")
			countValue, _ := rec.Get("partners")
			id, ok1 := idValue.(string)
			count, ok2 := countValue.(int64)
			if ok1 && ok2 {
				counts[id] = int(count)
			}
		}
		return counts, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]int), nil
}

// Subgraph implements GraphDriver.
func (n *Neo4jDriver) Subgraph(ctx context.Context, ids []string) ([]types.Edge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Company)-[r]-(b:Company)
			WHERE a.company_id IN $ids AND b.company_id IN $ids
			  AND a.company_id < b.company_id
			RETURN startNode(r).company_id AS source,
			       endNode(r).company_id AS target,
			       type(r) AS rel_type,
			       coalesce(r.strength, 0.0) AS strength
		`, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		return collectEdges(ctx, res, "")
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.Edge), nil
}

// Close implements GraphDriver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// collectEdges drains a result of (source, target, rel_type, strength)
// rows into deduplicated edges. relativeTo sets each edge's Direction;
// empty means leave Direction unset.
func collectEdges(ctx context.Context, res neo4j.ResultWithContext, relativeTo string) ([]types.Edge, error) {
	var edges []types.Edge
	for res.Next(ctx) {
		rec := res.Record()
		source, _ := rec.Get("source")
		target, _ := rec.Get("target")
		relType, _ := rec.Get("rel_type")
		strength, _ := rec.Get("strength")

		edge := types.Edge{
			Type: types.EdgeType(asString(relType)),
		}
		edge.SourceID = asString(source)
		edge.TargetID = asString(target)
		edge.Strength = asFloat(strength)
		if relativeTo != "" {
			if edge.SourceID == relativeTo {
				edge.Direction = types.DirectionOut
			} else {
				edge.Direction = types.DirectionIn
			}
		}
		edges = append(edges, edge)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return types.DedupeEdges(edges), nil
}

// companyFromNode splits node properties into named fields and the
// numeric attribute bag.
func companyFromNode(node dbtype.Node) types.Company {
	c := types.Company{
		Attributes: make(map[string]float64),
	}
	for key, value := range node.Props {
		switch key {
		case "company_id":
			c.ID = asString(value)
		case "name":
			c.Name = asString(value)
		case "sector":
			c.Sector = types.Sector(asString(value))
		case "description":
			c.Description = asString(value)
		case "aliases":
			if list, ok := value.([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						c.Aliases = append(c.Aliases, s)
					}
				}
			}
		default:
			if f, ok := asFloatOK(value); ok {
				c.Attributes[key] = f
			}
		}
	}
	return c
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	f, _ := asFloatOK(v)
	return f
}

func asFloatOK(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
