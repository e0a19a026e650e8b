package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
)

// ErrUnknownLayer is returned by Dispatch for a handle that is not drawn.
var ErrUnknownLayer = errors.New("unknown layer")

// Frame is one finished render pass as sent to the map page.
type Frame struct {
	Seq        uint64          `json:"seq"`
	PanEnabled bool            `json:"pan_enabled"`
	Info       Info            `json:"info"`
	Scene      json.RawMessage `json:"scene"`
}

// Publisher receives every flushed frame.
type Publisher interface {
	PublishFrame(f Frame)
}

type layerKind int

const (
	layerMarker layerKind = iota
	layerLine
)

type layer struct {
	kind            layerKind
	coords          []geo.Coord
	marker          MarkerOptions
	line            LineOptions
	label           string
	persistentLabel bool
	handlers        map[EventType]EventFunc
}

// Scene is an in-memory Renderer. It keeps the live layers and, on Flush,
// encodes them as a GeoJSON FeatureCollection for the page.
type Scene struct {
	mu         sync.Mutex
	next       Handle
	layers     map[Handle]*layer
	panEnabled bool
	info       Info
	seq        uint64
	last       Frame
	pub        Publisher
}

// NewScene returns an empty scene. pub may be nil.
func NewScene(pub Publisher) *Scene {
	return &Scene{
		layers:     make(map[Handle]*layer),
		panEnabled: true,
		info:       Info{Name: NoRouteSelected},
		pub:        pub,
	}
}

func (s *Scene) add(l *layer) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.layers[s.next] = l
	return s.next
}

func (s *Scene) PlaceMarker(at geo.Coord, opts MarkerOptions) Handle {
	return s.add(&layer{kind: layerMarker, coords: []geo.Coord{at}, marker: opts})
}

func (s *Scene) DrawLine(points []geo.Coord, opts LineOptions) Handle {
	pts := make([]geo.Coord, len(points))
	copy(pts, points)
	return s.add(&layer{kind: layerLine, coords: pts, line: opts})
}

func (s *Scene) BindLabel(h Handle, text string, persistent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[h]; ok {
		l.label, l.persistentLabel = text, persistent
	}
}

func (s *Scene) SetStyle(h Handle, st Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.layers[h]; ok && l.kind == layerMarker {
		l.marker.Style = st
	}
}

func (s *Scene) RemoveLayer(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layers, h)
}

func (s *Scene) OnEvent(h Handle, ev EventType, fn EventFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[h]
	if !ok {
		return
	}
	if l.handlers == nil {
		l.handlers = make(map[EventType]EventFunc)
	}
	l.handlers[ev] = fn
}

func (s *Scene) DisablePan() {
	s.mu.Lock()
	s.panEnabled = false
	s.mu.Unlock()
}

func (s *Scene) EnablePan() {
	s.mu.Lock()
	s.panEnabled = true
	s.mu.Unlock()
}

// PanEnabled reports whether the page may pan the map.
func (s *Scene) PanEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panEnabled
}

func (s *Scene) ShowInfo(info Info) {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}

// Flush encodes the current layers into a frame and publishes it.
func (s *Scene) Flush() {
	s.mu.Lock()
	fc := s.featureCollection()
	raw, err := json.Marshal(fc)
	if err != nil {
		s.mu.Unlock()
		logrus.WithError(err).Error("Scene: failed to encode GeoJSON")
		return
	}
	s.seq++
	frame := Frame{Seq: s.seq, PanEnabled: s.panEnabled, Info: s.info, Scene: raw}
	s.last = frame
	pub := s.pub
	s.mu.Unlock()

	if pub != nil {
		pub.PublishFrame(frame)
	}
}

// Last returns the most recently flushed frame.
func (s *Scene) Last() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LayerCount is the number of live layers.
func (s *Scene) LayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// Dispatch runs the handler bound to h for ev.
func (s *Scene) Dispatch(h Handle, ev EventType, at geo.Coord) error {
	s.mu.Lock()
	l, ok := s.layers[h]
	var fn EventFunc
	if ok {
		fn = l.handlers[ev]
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("layer %d: %w", h, ErrUnknownLayer)
	}
	if fn == nil {
		return fmt.Errorf("layer %d has no %s handler: %w", h, ev, ErrUnknownLayer)
	}
	fn(at)
	return nil
}

// featureCollection must be called with s.mu held.
func (s *Scene) featureCollection() *gjson.FeatureCollection {
	handles := make([]Handle, 0, len(s.layers))
	for h := range s.layers {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	fc := &gjson.FeatureCollection{Features: make([]*gjson.Feature, 0, len(handles))}
	for _, h := range handles {
		fc.Features = append(fc.Features, s.layers[h].feature(h))
	}
	return fc
}

func (l *layer) feature(h Handle) *gjson.Feature {
	props := map[string]interface{}{
		"layer": int64(h),
	}
	if l.label != "" {
		props["label"] = l.label
		props["label_persistent"] = l.persistentLabel
	}

	var g geom.T
	switch l.kind {
	case layerMarker:
		c := l.coords[0]
		g = geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat})
		props["kind"] = string(l.marker.Kind)
		props["draggable"] = l.marker.Draggable
		props["color"] = l.marker.Style.Color
		if l.marker.Style.FillColor != "" {
			props["fill_color"] = l.marker.Style.FillColor
		}
		props["route_id"] = l.marker.Ref.RouteID
		props["point"] = string(l.marker.Ref.Kind)
		if l.marker.Ref.Kind == models.PointWaypoint {
			props["index"] = l.marker.Ref.Index
		}
	case layerLine:
		flat := make([]float64, 0, 2*len(l.coords))
		for _, c := range l.coords {
			flat = append(flat, c.Lng, c.Lat)
		}
		g = geom.NewLineStringFlat(geom.XY, flat)
		props["kind"] = string(l.line.Kind)
		props["route_id"] = l.line.RouteID
		props["color"] = l.line.Color
		props["weight"] = l.line.Weight
		props["interactive"] = l.line.Interactive
	}

	return &gjson.Feature{
		ID:         strconv.FormatInt(int64(h), 10),
		Geometry:   g,
		Properties: props,
	}
}
