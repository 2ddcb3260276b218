package chessboard

type PieceKind int

const (
	King PieceKind = iota
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

func (k PieceKind) String() string {
	return []string{"King", "Queen", "Rook", "Bishop", "Knight", "Pawn"}[k]
}

type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	return []string{"White", "Black"}[c]
}

// Piece is a kind and a color. The zero value is a white king.
type Piece struct {
	Kind  PieceKind
	Color Color
}

func (p Piece) String() string {
	return p.Color.String() + " " + p.Kind.String()
}

// Square holds at most one piece.
type Square struct {
	piece    Piece
	occupied bool
}

func occupiedBy(p Piece) Square {
	return Square{piece: p, occupied: true}
}

// Piece returns the piece on the square and whether there is one.
func (s Square) Piece() (Piece, bool) {
	return s.piece, s.occupied
}

func (s Square) Empty() bool {
	return !s.occupied
}
