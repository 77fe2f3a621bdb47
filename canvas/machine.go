package canvas

import (
	"io"
	"log/slog"

	"github.com/meikuraledutech/chainchart"
)

// Machine is the canvas interaction state machine. It reads and writes the
// view transform and the graph in response to pointer, wheel and drop
// events. All methods run synchronously on the caller's event thread; a
// Machine is not safe for concurrent use.
type Machine struct {
	graph     *chainchart.Graph
	transform Transform
	mode      Mode
	selected  string
	logger    *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger that receives mode transitions at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithTransform starts the machine with a non-identity view.
func WithTransform(t Transform) Option {
	return func(m *Machine) { m.SetTransform(t) }
}

// NewMachine creates an idle machine editing g.
func NewMachine(g *chainchart.Graph, opts ...Option) *Machine {
	m := &Machine{
		graph:     g,
		transform: Identity(),
		mode:      Idle{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Graph returns the graph being edited.
func (m *Machine) Graph() *chainchart.Graph { return m.graph }

// Mode returns the active interaction mode.
func (m *Machine) Mode() Mode { return m.mode }

// Transform returns the current view transform.
func (m *Machine) Transform() Transform { return m.transform }

// SetTransform replaces the view transform; the zoom is clamped.
func (m *Machine) SetTransform(t Transform) {
	t.K = ClampZoom(t.K)
	m.transform = t
}

// ResetView returns to the identity transform.
func (m *Machine) ResetView() { m.transform = Identity() }

// Selected returns the selected node id, or "" when nothing is selected.
func (m *Machine) Selected() string { return m.selected }

// Select selects the node with the given id. Unknown ids clear the selection.
func (m *Machine) Select(id string) {
	if _, ok := m.graph.Node(id); !ok {
		id = ""
	}
	m.selected = id
}

// ClearSelection deselects any node.
func (m *Machine) ClearSelection() { m.selected = "" }

// DeleteSelected removes the selected node and its edges. A drag of that node
// or a connection drawn from one of its ports is cancelled.
func (m *Machine) DeleteSelected() bool {
	if m.selected == "" {
		return false
	}
	id := m.selected
	m.graph.RemoveNode(id)
	m.selected = ""
	switch mode := m.mode.(type) {
	case DraggingNode:
		if mode.NodeID == id {
			m.setMode(Idle{})
		}
	case DrawingConnection:
		if mode.Source.NodeID == id {
			m.setMode(Idle{})
		}
	}
	return true
}

// Wheel zooms around the cursor when ctrl or meta is held and pans otherwise.
// It never changes the mode.
func (m *Machine) Wheel(ev WheelEvent) {
	if ev.Ctrl || ev.Meta {
		var direction float64
		switch {
		case ev.DeltaY > 0:
			direction = -1
		case ev.DeltaY < 0:
			direction = 1
		default:
			return
		}
		m.transform = ZoomAt(m.transform, ev.Screen, 1+direction*ZoomStep)
		return
	}
	m.transform = Pan(m.transform, -ev.DeltaX, -ev.DeltaY)
}

// PointerDown starts a gesture. It is ignored unless the machine is idle.
func (m *Machine) PointerDown(ev PointerEvent) {
	if _, idle := m.mode.(Idle); !idle {
		return
	}

	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Target.Kind == HitCanvas) {
		m.selected = ""
		m.setMode(Panning{Origin: ev.Screen})
		return
	}

	switch ev.Target.Kind {
	case HitPort:
		m.startConnection(ev.Target.Port)
	case HitEdge:
		if ev.Button == ButtonSecondary || ev.Ctrl {
			if m.graph.Disconnect(ev.Target.EdgeID) {
				m.logger.Debug("edge removed", "edge", ev.Target.EdgeID)
			}
			return
		}
		m.selected = ""
	case HitNode:
		m.startDrag(ev)
	default:
		m.selected = ""
	}
}

// startConnection enters DrawingConnection when ref is an output port that
// the node's type really exposes. Anything else is ignored.
func (m *Machine) startConnection(ref chainchart.PortRef) {
	n, ok := m.graph.Node(ref.NodeID)
	if !ok {
		return
	}
	port, ok := chainchart.LookupPort(n.Type, ref.Side)
	if !ok || port.Kind != chainchart.PortOutput {
		return
	}
	anchor, _ := chainchart.Anchor(n, ref.Side)
	m.setMode(DrawingConnection{Source: ref, Anchor: anchor, Cursor: anchor})
}

func (m *Machine) startDrag(ev PointerEvent) {
	n, ok := m.graph.Node(ev.Target.NodeID)
	if !ok {
		m.selected = ""
		return
	}
	m.selected = n.ID
	if ev.Button != ButtonPrimary {
		return
	}
	world := ScreenToWorld(ev.Screen, m.transform)
	m.setMode(DraggingNode{NodeID: n.ID, Grab: world.Sub(n.Position)})
}

// PointerMove advances the active gesture.
func (m *Machine) PointerMove(ev PointerEvent) {
	switch mode := m.mode.(type) {
	case Panning:
		delta := ev.Screen.Sub(mode.Origin)
		m.transform = Pan(m.transform, delta.X, delta.Y)
		m.mode = Panning{Origin: ev.Screen}
	case DraggingNode:
		world := ScreenToWorld(ev.Screen, m.transform)
		m.graph.MoveNode(mode.NodeID, SnapPoint(world.Sub(mode.Grab), SnapSize))
	case DrawingConnection:
		mode.Cursor = ScreenToWorld(ev.Screen, m.transform)
		m.mode = mode
	}
}

// PointerUp finishes the active gesture. A pending connection is committed
// only when released over an input port of another node.
func (m *Machine) PointerUp(ev PointerEvent) {
	if dc, ok := m.mode.(DrawingConnection); ok && ev.Target.Kind == HitPort {
		if m.acceptsConnection(dc.Source, ev.Target.Port) {
			if e, ok := m.graph.Connect(dc.Source.String(), ev.Target.Port.String()); ok {
				m.logger.Debug("edge created", "edge", e.ID, "from", e.From, "to", e.To)
			}
		}
	}
	m.setMode(Idle{})
}

// PointerLeave behaves like a release outside any target.
func (m *Machine) PointerLeave() {
	m.PointerUp(PointerEvent{})
}

func (m *Machine) acceptsConnection(source, target chainchart.PortRef) bool {
	if target.NodeID == source.NodeID {
		return false
	}
	n, ok := m.graph.Node(target.NodeID)
	if !ok {
		return false
	}
	port, ok := chainchart.LookupPort(n.Type, target.Side)
	return ok && port.Kind == chainchart.PortInput
}

// Drop adds a node for a palette item released at ev.Screen. The cursor ends
// up over the node's centre and the position snaps to the grid. The new node
// is selected.
func (m *Machine) Drop(ev DropEvent) (chainchart.Node, error) {
	t, err := chainchart.ParseNodeType(ev.Token)
	if err != nil {
		return chainchart.Node{}, err
	}
	half := chainchart.NodeSize(t) / 2
	world := ScreenToWorld(ev.Screen, m.transform)
	pos := SnapPoint(world.Sub(chainchart.Point{X: half, Y: half}), SnapSize)

	n := m.graph.AddNode(t, pos)
	m.selected = n.ID
	return n, nil
}

// PlaceInView adds a node of type t centred in a viewport of the given
// screen size and selects it.
func (m *Machine) PlaceInView(t chainchart.NodeType, viewport chainchart.Point) chainchart.Node {
	centre := ScreenToWorld(chainchart.Point{X: viewport.X / 2, Y: viewport.Y / 2}, m.transform)
	half := chainchart.NodeSize(t) / 2
	n := m.graph.AddNode(t, SnapPoint(centre.Sub(chainchart.Point{X: half, Y: half}), SnapSize))
	m.selected = n.ID
	return n
}

func (m *Machine) setMode(next Mode) {
	if ModeName(next) != ModeName(m.mode) {
		m.logger.Debug("canvas mode", "from", ModeName(m.mode), "to", ModeName(next))
	}
	m.mode = next
}
