package godeck

import "sort"

// PlaceholderType represents the p:ph type attribute of a placeholder.
type PlaceholderType string

const (
	PlaceholderTitle    PlaceholderType = "title"
	PlaceholderCtrTitle PlaceholderType = "ctrTitle"
	PlaceholderSubTitle PlaceholderType = "subTitle"
	PlaceholderBody     PlaceholderType = "body"
	PlaceholderObject   PlaceholderType = "obj"
	PlaceholderPicture  PlaceholderType = "pic"
	PlaceholderChart    PlaceholderType = "chart"
	PlaceholderTable    PlaceholderType = "tbl"
	PlaceholderMedia    PlaceholderType = "media"
	PlaceholderDate     PlaceholderType = "dt"
	PlaceholderFooter   PlaceholderType = "ftr"
	PlaceholderSlideNum PlaceholderType = "sldNum"
)

// A p:ph element with no type attribute defaults to "obj".
const placeholderTypeDefault = PlaceholderObject

// IsTitleType reports whether t is a title or centered title.
func (t PlaceholderType) IsTitleType() bool {
	return t == PlaceholderTitle || t == PlaceholderCtrTitle
}

// IsBodyLike reports whether t counts as a body slot. Everything except
// the three heading types does, picture and object placeholders included.
func (t PlaceholderType) IsBodyLike() bool {
	switch t {
	case PlaceholderTitle, PlaceholderCtrTitle, PlaceholderSubTitle:
		return false
	}
	return true
}

// isLatent reports whether a layout placeholder of this type stays on the
// layout instead of being cloned onto new slides.
func (t PlaceholderType) isLatent() bool {
	switch t {
	case PlaceholderDate, PlaceholderFooter, PlaceholderSlideNum:
		return true
	}
	return false
}

// Placeholder represents a placeholder shape on a built slide.
// Geometry is the effective geometry after layout and master inheritance.
type Placeholder struct {
	phType  PlaceholderType
	idx     int
	name    string
	offsetX int64 // in EMU
	offsetY int64 // in EMU
	width   int64 // in EMU
	height  int64 // in EMU
	hasText bool
	frame   *TextFrame
}

// NewPlaceholder creates a placeholder of the given type with an empty text frame.
func NewPlaceholder(phType PlaceholderType) *Placeholder {
	return &Placeholder{
		phType:  phType,
		hasText: true,
		frame:   NewTextFrame(),
	}
}

// GetPlaceholderType returns the placeholder type.
func (p *Placeholder) GetPlaceholderType() PlaceholderType { return p.phType }

// GetIndex returns the placeholder index (p:ph idx).
func (p *Placeholder) GetIndex() int { return p.idx }

// SetIndex sets the placeholder index.
func (p *Placeholder) SetIndex(idx int) *Placeholder { p.idx = idx; return p }

// GetName returns the shape name.
func (p *Placeholder) GetName() string { return p.name }

// SetName sets the shape name.
func (p *Placeholder) SetName(name string) *Placeholder { p.name = name; return p }

func (p *Placeholder) GetOffsetX() int64 { return p.offsetX }
func (p *Placeholder) GetOffsetY() int64 { return p.offsetY }
func (p *Placeholder) GetWidth() int64   { return p.width }
func (p *Placeholder) GetHeight() int64  { return p.height }

// SetPosition sets the placeholder offset in EMU.
func (p *Placeholder) SetPosition(x, y int64) *Placeholder {
	p.offsetX = x
	p.offsetY = y
	return p
}

// SetSize sets the placeholder extent in EMU.
func (p *Placeholder) SetSize(w, h int64) *Placeholder {
	p.width = w
	p.height = h
	return p
}

// Area returns width times height in square EMU.
func (p *Placeholder) Area() int64 {
	return p.width * p.height
}

// HasTextFrame reports whether the placeholder can hold text.
func (p *Placeholder) HasTextFrame() bool { return p.hasText }

// TextFrame returns the placeholder's text frame.
func (p *Placeholder) TextFrame() *TextFrame {
	if p.frame == nil {
		p.frame = NewTextFrame()
	}
	return p.frame
}

// Slide represents a slide being built from a layout. Its placeholders are
// cloned from the layout, minus the latent date/footer/slide-number ones.
type Slide struct {
	layout       *Layout
	placeholders []*Placeholder
	background   *Color
	notes        *TextFrame
}

// newSlideFromLayout clones a layout's placeholders into a fresh slide.
// Each clone carries the layout placeholder's effective geometry and an
// empty text frame.
func newSlideFromLayout(layout *Layout) *Slide {
	s := &Slide{layout: layout}
	for _, lp := range layout.Placeholders() {
		if lp.Type.isLatent() {
			continue
		}
		ph := &Placeholder{
			phType:  lp.Type,
			idx:     lp.Idx,
			name:    lp.Name,
			offsetX: lp.OffsetX,
			offsetY: lp.OffsetY,
			width:   lp.Width,
			height:  lp.Height,
			hasText: lp.HasText,
			frame:   NewTextFrame(),
		}
		s.placeholders = append(s.placeholders, ph)
	}
	return s
}

// Layout returns the layout this slide was built from.
func (s *Slide) Layout() *Layout { return s.layout }

// GetPlaceholders returns the slide's placeholders in document order.
func (s *Slide) GetPlaceholders() []*Placeholder { return s.placeholders }

// SetBackground sets a solid background color, overriding the layout's.
func (s *Slide) SetBackground(c Color) *Slide {
	s.background = &c
	return s
}

// Background returns the background override, nil when inherited.
func (s *Slide) Background() *Color { return s.background }

// HasNotes reports whether the slide has speaker notes content.
func (s *Slide) HasNotes() bool {
	return s.notes != nil && s.notes.GetText() != ""
}

// NotesTextFrame returns the speaker notes text frame, creating it on
// first access.
func (s *Slide) NotesTextFrame() *TextFrame {
	if s.notes == nil {
		s.notes = NewTextFrame()
	}
	return s.notes
}

// TitlePlaceholder returns the slide's title placeholder. It prefers a
// title or centered title and falls back to the first placeholder with a
// text frame. Returns nil when the slide has no text-capable placeholder.
func (s *Slide) TitlePlaceholder() *Placeholder {
	for _, ph := range s.placeholders {
		if ph.phType.IsTitleType() {
			return ph
		}
	}
	for _, ph := range s.placeholders {
		if ph.hasText {
			return ph
		}
	}
	return nil
}

// BodyPlaceholdersSorted returns the text-capable body slots sorted by
// left edge. Picture and object placeholders count as body slots here;
// only the three heading types are excluded. The sort is stable so slots
// at the same left edge keep document order.
func (s *Slide) BodyPlaceholdersSorted() []*Placeholder {
	var bodies []*Placeholder
	for _, ph := range s.placeholders {
		if !ph.phType.IsBodyLike() {
			continue
		}
		if !ph.hasText {
			continue
		}
		bodies = append(bodies, ph)
	}
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].offsetX < bodies[j].offsetX
	})
	return bodies
}

// MainTextPlaceholder returns the main body text box: the largest
// text-capable placeholder that is not a heading, picture, or object
// slot. Ties on area go to the placeholder that appears first in
// document order. Returns nil when no candidate exists.
func (s *Slide) MainTextPlaceholder() *Placeholder {
	var best *Placeholder
	for _, ph := range s.placeholders {
		switch ph.phType {
		case PlaceholderTitle, PlaceholderCtrTitle, PlaceholderSubTitle,
			PlaceholderPicture, PlaceholderObject:
			continue
		}
		if !ph.hasText {
			continue
		}
		if best == nil || ph.Area() > best.Area() {
			best = ph
		}
	}
	return best
}

// SecondaryTextPlaceholder returns the second-largest main-box candidate,
// used for the right region on two-column layouts. Returns nil when the
// slide has fewer than two candidates.
func (s *Slide) SecondaryTextPlaceholder() *Placeholder {
	main := s.MainTextPlaceholder()
	if main == nil {
		return nil
	}
	var second *Placeholder
	for _, ph := range s.placeholders {
		switch ph.phType {
		case PlaceholderTitle, PlaceholderCtrTitle, PlaceholderSubTitle,
			PlaceholderPicture, PlaceholderObject:
			continue
		}
		if !ph.hasText || ph == main {
			continue
		}
		if second == nil || ph.Area() > second.Area() {
			second = ph
		}
	}
	return second
}
