package flow

// Layout holds the spacing constants used to place nodes.
type Layout struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing" json:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing" json:"vertical_spacing"`
	CenterX           float64 `toml:"center_x" json:"center_x"`
	BaseY             float64 `toml:"base_y" json:"base_y"`
}

var (
	// DefaultBuildLayout spaces siblings produced by [Build] and by
	// [Graph.ToggleContainer].
	DefaultBuildLayout = Layout{HorizontalSpacing: 200, VerticalSpacing: 120, CenterX: 400, BaseY: 50}

	// DefaultReorganizeLayout is used by [Graph.Reorganize].
	DefaultReorganizeLayout = Layout{HorizontalSpacing: 250, VerticalSpacing: 150, CenterX: 400, BaseY: 50}
)

// withDefaults fills zero spacing fields from def. Zero CenterX and BaseY are
// legitimate coordinates and are kept when either spacing was set.
func (l Layout) withDefaults(def Layout) Layout {
	if l == (Layout{}) {
		return def
	}
	if l.HorizontalSpacing == 0 {
		l.HorizontalSpacing = def.HorizontalSpacing
	}
	if l.VerticalSpacing == 0 {
		l.VerticalSpacing = def.VerticalSpacing
	}
	return l
}

// spread returns the x coordinate of sibling i out of n centred on x.
func (l Layout) spread(x float64, i, n int) float64 {
	return x + (float64(i)-float64(n-1)/2)*l.HorizontalSpacing
}

// Depths returns each node's distance from a root. A node reachable from
// several parents takes the depth of the first one found: roots are visited
// in node order, children in edge order. Nodes only reachable through a cycle
// start a new tree at depth 0. Every node is visited once, so the walk
// terminates on any graph.
func (g *Graph) Depths() map[string]int {
	adj := g.adjacency()
	depth := make(map[string]int, len(g.nodes))

	var visit func(id string, d int)
	visit = func(id string, d int) {
		if _, done := depth[id]; done {
			return
		}
		depth[id] = d
		for _, child := range adj[id] {
			visit(child, d+1)
		}
	}

	for _, r := range g.Roots() {
		visit(r.ID, 0)
	}
	for _, n := range g.nodes {
		visit(n.ID, 0)
	}
	return depth
}

// Reorganize repositions every node from the edges alone. Nodes are grouped
// by depth; each group is spread along x around l.CenterX in node order and
// placed at l.BaseY + depth*l.VerticalSpacing. A zero Layout selects
// [DefaultReorganizeLayout]. Positions do not feed back into the result, so
// reorganizing twice yields the same positions.
func (g *Graph) Reorganize(l Layout) {
	l = l.withDefaults(DefaultReorganizeLayout)
	depth := g.Depths()

	levels := make(map[int][]*Node)
	for _, n := range g.nodes {
		d := depth[n.ID]
		levels[d] = append(levels[d], n)
	}
	for d, level := range levels {
		for i, n := range level {
			n.Position = Position{
				X: l.spread(l.CenterX, i, len(level)),
				Y: l.BaseY + float64(d)*l.VerticalSpacing,
			}
		}
	}
	g.touch()
}
