package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = sq
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	// Update derived state
	pos.updateOccupied()
	pos.findKings()
	pos.computeKeyBundle()
	pos.UpdateCheckers()

	return pos, nil
}

// computeKeyBundle recomputes the full zobrist-style key bundle (overall,
// pawn, non-pawn per color, majors) from scratch. Used on FEN parse and as
// the reference implementation the incremental make/unmake path must agree
// with (§8 property 2).
func (p *Position) computeKeyBundle() {
	p.Hash = 0
	p.PawnKey = 0
	p.NonPawnKey = [2]uint64{}
	p.MajorKey = 0

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				p.xorPieceKey(c, pt, bb.PopLSB())
			}
		}
	}

	if p.SideToMove == Black {
		p.Hash ^= zobristSideToMove
	}
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				sq := NewSquare(file, rank)
				pos.setPiece(piece, sq)
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
// Standard KQkq letters assume rooks start on the a/h files. Shredder-FEN
// style file letters (e.g. "HAha") instead name the rook's file directly,
// which is how Chess960/DFRC positions record a rook that doesn't start in
// a corner; CastlingRookSquare records the resolved square either way.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.CastlingRights |= WhiteKingSideCastle
			pos.CastlingRookSquare[crWK] = H1
		case 'Q':
			pos.CastlingRights |= WhiteQueenSideCastle
			pos.CastlingRookSquare[crWQ] = A1
		case 'k':
			pos.CastlingRights |= BlackKingSideCastle
			pos.CastlingRookSquare[crBK] = H8
		case 'q':
			pos.CastlingRights |= BlackQueenSideCastle
			pos.CastlingRookSquare[crBQ] = A8
		default:
			if err := parseShredderCastling(pos, c); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseShredderCastling handles a single Shredder-FEN file-letter castling
// character by resolving it relative to the king's file already placed on
// the board (the king-side right is whichever rook file is east of the king).
func parseShredderCastling(pos *Position, c rune) error {
	upper := c >= 'A' && c <= 'H'
	lower := c >= 'a' && c <= 'h'
	if !upper && !lower {
		return fmt.Errorf("invalid castling character: %c", c)
	}

	color := White
	if lower {
		color = Black
	}
	file := int(c - 'A')
	if lower {
		file = int(c - 'a')
	}

	kingSq := pos.Pieces[color][King].LSB()
	rookSq := NewSquare(file, kingSq.Rank())

	kingSide := file > int(kingSq.File())
	if color == White {
		if kingSide {
			pos.CastlingRights |= WhiteKingSideCastle
			pos.CastlingRookSquare[crWK] = rookSq
		} else {
			pos.CastlingRights |= WhiteQueenSideCastle
			pos.CastlingRookSquare[crWQ] = rookSq
		}
	} else {
		if kingSide {
			pos.CastlingRights |= BlackKingSideCastle
			pos.CastlingRookSquare[crBK] = rookSq
		} else {
			pos.CastlingRights |= BlackQueenSideCastle
			pos.CastlingRookSquare[crBQ] = rookSq
		}
	}
	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

