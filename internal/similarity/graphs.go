package similarity

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	dgraph "github.com/dominikbraun/graph"

	"engineer-search/internal/graph"
	"engineer-search/internal/knowledge"
)

// SkillGraph is a process-wide snapshot of skill-skill correlations at or
// above the configured threshold. Immutable once built.
type SkillGraph struct {
	g dgraph.Graph[string, string]
}

// Correlation returns the edge strength between two skills, 0 when absent.
func (sg *SkillGraph) Correlation(a, b string) float64 {
	edge, err := sg.g.Edge(a, b)
	if err != nil {
		return 0
	}
	strength, _ := edge.Properties.Data.(float64)
	return strength
}

type domainNode struct {
	ParentID      string
	EncompassedBy string
}

// DomainGraph is a snapshot of one domain hierarchy: parent links plus
// encompassedBy tags.
type DomainGraph struct {
	nodes map[string]domainNode
}

func (dg *DomainGraph) parent(id string) string {
	return dg.nodes[id].ParentID
}

func (dg *DomainGraph) encompassedBy(id string) string {
	return dg.nodes[id].EncompassedBy
}

func (dg *DomainGraph) ancestors(id string) map[string]bool {
	out := map[string]bool{}
	for cur := dg.parent(id); cur != "" && !out[cur]; cur = dg.parent(cur) {
		out[cur] = true
	}
	return out
}

// DomainGraphs pairs the business and technical hierarchies.
type DomainGraphs struct {
	Business  *DomainGraph
	Technical *DomainGraph
}

// Cache holds the similarity engine's graph snapshots. Reads are lock-free
// pointer loads; Refresh rebuilds and swaps atomically.
type Cache struct {
	db *graph.DB
	kb *knowledge.Config

	skills  atomic.Pointer[SkillGraph]
	domains atomic.Pointer[DomainGraphs]
}

func NewCache(db *graph.DB, kb *knowledge.Config) *Cache {
	return &Cache{db: db, kb: kb}
}

// SkillGraph returns the cached snapshot, loading it on first use.
func (c *Cache) SkillGraph(ctx context.Context) (*SkillGraph, error) {
	if sg := c.skills.Load(); sg != nil {
		return sg, nil
	}
	sg, err := loadSkillGraph(ctx, c.db, c.kb.CorrelationThreshold)
	if err != nil {
		return nil, err
	}
	c.skills.Store(sg)
	return sg, nil
}

// DomainGraphs returns the cached snapshot, loading it on first use.
func (c *Cache) DomainGraphs(ctx context.Context) (*DomainGraphs, error) {
	if dg := c.domains.Load(); dg != nil {
		return dg, nil
	}
	dg, err := loadDomainGraphs(ctx, c.db)
	if err != nil {
		return nil, err
	}
	c.domains.Store(dg)
	return dg, nil
}

// Refresh rebuilds both snapshots and swaps them in. In-flight readers keep
// their old snapshots.
func (c *Cache) Refresh(ctx context.Context) error {
	sg, err := loadSkillGraph(ctx, c.db, c.kb.CorrelationThreshold)
	if err != nil {
		return fmt.Errorf("refresh skill graph: %w", err)
	}
	dg, err := loadDomainGraphs(ctx, c.db)
	if err != nil {
		return fmt.Errorf("refresh domain graphs: %w", err)
	}
	c.skills.Store(sg)
	c.domains.Store(dg)
	log.Printf("[Similarity] Graph snapshots refreshed")
	return nil
}

func loadSkillGraph(ctx context.Context, db *graph.DB, threshold float64) (*SkillGraph, error) {
	session := db.Session(ctx)
	defer session.Close(ctx)

	g := dgraph.New(dgraph.StringHash, dgraph.Weighted())

	vertices, err := session.Collect(ctx, "MATCH (s:Skill) RETURN s.id AS id", nil)
	if err != nil {
		return nil, fmt.Errorf("load skill vertices: %w", err)
	}
	for _, rec := range vertices {
		_ = g.AddVertex(graph.String(rec["id"]))
	}

	edges, err := session.Collect(ctx, `MATCH (a:Skill)-[r:CORRELATES_WITH]->(b:Skill)
WHERE r.strength >= $threshold
RETURN a.id AS a, b.id AS b, r.strength AS strength`,
		map[string]any{"threshold": threshold})
	if err != nil {
		return nil, fmt.Errorf("load skill correlations: %w", err)
	}
	for _, rec := range edges {
		err := g.AddEdge(graph.String(rec["a"]), graph.String(rec["b"]),
			dgraph.EdgeData(graph.Float(rec["strength"])))
		if err != nil && err != dgraph.ErrEdgeAlreadyExists {
			return nil, fmt.Errorf("add correlation edge: %w", err)
		}
	}

	log.Printf("[Similarity] Skill graph loaded: %d skills, %d correlations >= %.2f",
		len(vertices), len(edges), threshold)
	return &SkillGraph{g: g}, nil
}

func loadDomainGraphs(ctx context.Context, db *graph.DB) (*DomainGraphs, error) {
	session := db.Session(ctx)
	defer session.Close(ctx)

	business, err := loadDomainGraph(ctx, session, "BusinessDomain")
	if err != nil {
		return nil, err
	}
	technical, err := loadDomainGraph(ctx, session, "TechnicalDomain")
	if err != nil {
		return nil, err
	}
	return &DomainGraphs{Business: business, Technical: technical}, nil
}

func loadDomainGraph(ctx context.Context, runner graph.Runner, label string) (*DomainGraph, error) {
	query := fmt.Sprintf(`MATCH (d:%[1]s)
OPTIONAL MATCH (d)-[:PART_OF]->(p:%[1]s)
RETURN d.id AS id, p.id AS parentId, d.encompassedBy AS encompassedBy`, label)

	records, err := runner.Collect(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s hierarchy: %w", label, err)
	}

	nodes := make(map[string]domainNode, len(records))
	for _, rec := range records {
		id := graph.String(rec["id"])
		parent := graph.String(rec["parentId"])
		if parent == id {
			parent = ""
		}
		nodes[id] = domainNode{
			ParentID:      parent,
			EncompassedBy: graph.String(rec["encompassedBy"]),
		}
	}
	return &DomainGraph{nodes: nodes}, nil
}
