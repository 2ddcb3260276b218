// Package chessboard models a chess board in its starting position and
// renders it as terminal text.
package chessboard

import (
	"log/slog"

	chess "github.com/corentings/chess/v2"
)

var log = slog.Default().With("package", "chessboard")

// Size is the number of rows and of columns on the board.
const Size = 8

// Position is a grid index pair. Row 0 is black's back rank.
type Position struct {
	Row int
	Col int
}

func (p Position) valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

var backRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is an 8x8 grid of squares with a fixed coordinate map.
// Nothing mutates a Board once NewBoard returns it.
type Board struct {
	squares     [Size][Size]Square
	coordinates map[string]Position
	convention  CoordinateConvention
}

type BoardOptions struct {
	Coordinates CoordinateConvention
}

var defaultBoardOptions = BoardOptions{
	Coordinates: LegacyCoordinates,
}

type BoardOption func(*BoardOptions)

func WithCoordinates(c CoordinateConvention) BoardOption {
	return func(opts *BoardOptions) {
		opts.Coordinates = c
	}
}

// NewBoard returns a board set up in the standard starting position.
func NewBoard(opts ...BoardOption) *Board {
	boardOpts := defaultBoardOptions
	for _, opt := range opts {
		opt(&boardOpts)
	}

	b := &Board{
		coordinates: boardOpts.Coordinates.build(),
		convention:  boardOpts.Coordinates,
	}
	for col := 0; col < Size; col++ {
		b.squares[1][col] = occupiedBy(Piece{Kind: Pawn, Color: Black})
		b.squares[6][col] = occupiedBy(Piece{Kind: Pawn, Color: White})
	}
	for col, kind := range backRank {
		b.squares[0][col] = occupiedBy(Piece{Kind: kind, Color: Black})
		b.squares[7][col] = occupiedBy(Piece{Kind: kind, Color: White})
	}
	log.Debug("board created", "coordinates", boardOpts.Coordinates.String())
	return b
}

// At returns the square at p. Positions off the grid read as empty.
func (b *Board) At(p Position) Square {
	if !p.valid() {
		return Square{}
	}
	return b.squares[p.Row][p.Col]
}

// Row returns a copy of one grid row.
func (b *Board) Row(row int) [Size]Square {
	if row < 0 || row >= Size {
		return [Size]Square{}
	}
	return b.squares[row]
}

// Occupied counts the squares holding a piece.
func (b *Board) Occupied() int {
	n := 0
	for _, row := range b.squares {
		for _, sq := range row {
			if !sq.Empty() {
				n++
			}
		}
	}
	return n
}

// Lookup resolves an algebraic label registered at construction.
// The label must match exactly; there is no trimming or case folding.
func (b *Board) Lookup(coordinate string) (Position, bool) {
	p, ok := b.coordinates[coordinate]
	return p, ok
}

// Coordinates reports which convention Lookup uses.
func (b *Board) Coordinates() CoordinateConvention {
	return b.convention
}

var pieceTypes = map[PieceKind]chess.PieceType{
	King:   chess.King,
	Queen:  chess.Queen,
	Rook:   chess.Rook,
	Bishop: chess.Bishop,
	Knight: chess.Knight,
	Pawn:   chess.Pawn,
}

var pieceColors = map[Color]chess.Color{
	White: chess.White,
	Black: chess.Black,
}

// FEN returns the piece placement field of the board in FEN, starting
// with row 0.
func (b *Board) FEN() string {
	m := make(map[chess.Square]chess.Piece, 32)
	for row := range b.squares {
		for col, sq := range b.squares[row] {
			p, ok := sq.Piece()
			if !ok {
				continue
			}
			square := chess.NewSquare(chess.File(col), chess.Rank(Size-1-row))
			m[square] = chess.NewPiece(pieceTypes[p.Kind], pieceColors[p.Color])
		}
	}
	return chess.NewBoard(m).String()
}
