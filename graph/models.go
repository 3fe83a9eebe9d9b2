package graph

import (
	"time"
)

// NodeKind tags the variant of a node. The set is closed: kind-specific
// logic switches on the kind and reads the matching payload variant.
type NodeKind string

const (
	KindRequirement NodeKind = "requirement"
	KindDeliverable NodeKind = "deliverable"
	KindTask        NodeKind = "task"
	KindSubtask     NodeKind = "subtask"
	KindMilestone   NodeKind = "milestone"
	KindDependency  NodeKind = "dependency"
	KindAgent       NodeKind = "agent"
)

// Status is the lifecycle state of a node.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusComplete   Status = "complete"
	StatusBlocked    Status = "blocked"
	StatusFailed     Status = "failed"
)

// EdgeKind tags the variant of an edge.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "contains"
	EdgeDependsOn  EdgeKind = "depends-on"
	EdgeReferences EdgeKind = "references"
	EdgeFlowsTo    EdgeKind = "flows-to"
	EdgeEvolvesTo  EdgeKind = "evolves-to"
	EdgeTests      EdgeKind = "tests"
	EdgeAssignedTo EdgeKind = "assigned-to"
)

// Position is an optional 2-D placement hint for rendering backends.
// The engine stores it verbatim and never computes layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ItemMeta holds the bookkeeping record shared by nodes and edges.
type ItemMeta struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Priority       string    `json:"priority,omitempty"`
	EstimatedHours float64   `json:"estimated_hours,omitempty"`
	Progress       float64   `json:"progress,omitempty"` // 0..100
	Tags           []string  `json:"tags,omitempty"`
}

// Payload is a closed tagged union keyed by node kind. Exactly one variant
// pointer is non-nil for a payload-bearing node; dependency markers carry
// none. Subtasks share the task variant.
type Payload struct {
	Requirement *RequirementPayload `json:"requirement,omitempty"`
	Deliverable *DeliverablePayload `json:"deliverable,omitempty"`
	Task        *TaskPayload        `json:"task,omitempty"`
	Milestone   *MilestonePayload   `json:"milestone,omitempty"`
	Agent       *AgentPayload       `json:"agent,omitempty"`
}

// Empty reports whether no variant is set.
func (p Payload) Empty() bool {
	return p.Requirement == nil && p.Deliverable == nil && p.Task == nil &&
		p.Milestone == nil && p.Agent == nil
}

// RequirementPayload is the domain object behind a requirement node.
type RequirementPayload struct {
	Text               string   `json:"text"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// DeliverablePayload is the domain object behind a deliverable node.
type DeliverablePayload struct {
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskPayload is the domain object behind task and subtask nodes.
type TaskPayload struct {
	Description string `json:"description"`
	Assignee    string `json:"assignee,omitempty"`
}

// MilestonePayload is the domain object behind a milestone node.
type MilestonePayload struct {
	Date *time.Time `json:"date,omitempty"`
}

// AgentPayload is the domain object behind an agent node.
type AgentPayload struct {
	Role string `json:"role,omitempty"`
}

// Node is an entity in the project graph.
type Node struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     NodeKind  `json:"kind"`
	Payload  Payload   `json:"payload,omitempty"`
	Position *Position `json:"position,omitempty"`
	Status   Status    `json:"status,omitempty"`
	Meta     ItemMeta  `json:"meta"`
}

// Edge is a directed relationship between two nodes. Source and Target are
// node ids; edges whose endpoints are absent from the node set are kept but
// excluded from traversal and analytics.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Label  string   `json:"label,omitempty"`
	Weight float64  `json:"weight,omitempty"`
	Meta   ItemMeta `json:"meta"`
}

// Document is one graph snapshot: ordered node and edge collections plus
// document-level metadata. Snapshots returned by the store are deep copies;
// mutating one never affects the store.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Nodes         []Node    `json:"nodes"`
	Edges         []Edge    `json:"edges"`
	ActiveFilters []string  `json:"active_filters,omitempty"`
}

// clone returns a deep copy of the node.
func (n Node) clone() Node {
	out := n
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	out.Meta = n.Meta.clone()
	out.Payload = n.Payload.clone()
	return out
}

// clone returns a deep copy of the edge.
func (e Edge) clone() Edge {
	out := e
	out.Meta = e.Meta.clone()
	return out
}

func (m ItemMeta) clone() ItemMeta {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}

func (p Payload) clone() Payload {
	var out Payload
	if p.Requirement != nil {
		r := *p.Requirement
		r.AcceptanceCriteria = append([]string(nil), p.Requirement.AcceptanceCriteria...)
		out.Requirement = &r
	}
	if p.Deliverable != nil {
		d := *p.Deliverable
		if p.Deliverable.DueDate != nil {
			t := *p.Deliverable.DueDate
			d.DueDate = &t
		}
		out.Deliverable = &d
	}
	if p.Task != nil {
		t := *p.Task
		out.Task = &t
	}
	if p.Milestone != nil {
		ms := *p.Milestone
		if p.Milestone.Date != nil {
			t := *p.Milestone.Date
			ms.Date = &t
		}
		out.Milestone = &ms
	}
	if p.Agent != nil {
		a := *p.Agent
		out.Agent = &a
	}
	return out
}

// Clone returns a deep copy of the document. All node, edge, and metadata
// slices are freshly allocated.
func (d Document) Clone() Document {
	out := d
	out.Nodes = make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		out.Nodes[i] = n.clone()
	}
	out.Edges = make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		out.Edges[i] = e.clone()
	}
	out.ActiveFilters = append([]string(nil), d.ActiveFilters...)
	return out
}

// NodeByID returns the node with the given id, if present.
func (d Document) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// nodeSet returns the set of node ids present in the document.
func (d Document) nodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

// validEdges returns the edges whose endpoints both exist in the node set.
// Imported or partially filtered data commonly carries dangling references;
// they are tolerated in the collections but never traversed.
func (d Document) validEdges() []Edge {
	nodes := d.nodeSet()
	out := make([]Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		if _, ok := nodes[e.Source]; !ok {
			continue
		}
		if _, ok := nodes[e.Target]; !ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
