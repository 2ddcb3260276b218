package chessboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
)

var glyphs = map[PieceKind]rune{
	King:   'K',
	Queen:  'Q',
	Rook:   'R',
	Bishop: 'B',
	Knight: 'N',
	Pawn:   'P',
}

// Glyph returns the letter for p: uppercase for white, lowercase for black.
func Glyph(p Piece) rune {
	g := glyphs[p.Kind]
	if p.Color == Black {
		g += 'a' - 'A'
	}
	return g
}

const (
	separator = "   " + "----------------"
	footer    = "    A B C D E F G H"
)

type RenderOptions struct {
	Colors bool
}

var defaultRenderOptions = RenderOptions{
	Colors: true,
}

type RenderOption func(*RenderOptions)

// WithColors turns ANSI styling of glyphs on or off. The text is the same
// either way.
func WithColors(enabled bool) RenderOption {
	return func(opts *RenderOptions) {
		opts.Colors = enabled
	}
}

// Renderer writes a board as one line per rank, highest rank first,
// followed by a separator and a file footer.
type Renderer struct {
	au aurora.Aurora
}

func NewRenderer(opts ...RenderOption) *Renderer {
	renderOpts := defaultRenderOptions
	for _, opt := range opts {
		opt(&renderOpts)
	}
	return &Renderer{au: aurora.NewAurora(renderOpts.Colors)}
}

func (r *Renderer) glyph(sq Square) string {
	p, ok := sq.Piece()
	if !ok {
		return " "
	}
	g := string(Glyph(p))
	if p.Color == White {
		return r.au.Yellow(g).String()
	}
	return r.au.Blue(g).String()
}

// Render returns the full text of b.
func (r *Renderer) Render(b *Board) string {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	r.RenderTo(&buf, b)
	return buf.String()
}

// RenderTo streams the rank lines, separator and footer of b to w.
func (r *Renderer) RenderTo(w io.Writer, b *Board) (int64, error) {
	var written int64
	emit := func(line string) error {
		n, err := io.WriteString(w, line+"\n")
		written += int64(n)
		return err
	}

	tokens := make([]string, Size)
	for row := 0; row < Size; row++ {
		for col, sq := range b.Row(row) {
			tokens[col] = r.glyph(sq)
		}
		line := fmt.Sprintf("%d | %s", Size-row, strings.Join(tokens, " "))
		if err := emit(line); err != nil {
			return written, fmt.Errorf("failed to write rank %d: %w", Size-row, err)
		}
	}
	if err := emit(separator); err != nil {
		return written, fmt.Errorf("failed to write separator: %w", err)
	}
	if err := emit(footer); err != nil {
		return written, fmt.Errorf("failed to write footer: %w", err)
	}
	return written, nil
}
