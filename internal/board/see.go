package board

// SEE (static exchange evaluation) answers a threshold question: is the net
// material won by playing m at least threshold? Grounded on the swap-array
// SEE in the teacher's internal/engine/eval.go (material order, attacker
// lookup) but reshaped into the direct threshold-comparison algorithm
// spec §4.D describes, so it returns bool instead of an absolute centipawn
// gain and short-circuits as soon as the sign of the running score is
// decided rather than always walking the full exchange.
func (p *Position) SEE(m Move, threshold int) bool {
	from := m.From()
	to := m.To()

	moved := p.PieceAt(from)
	if moved == NoPiece {
		return false
	}
	us := moved.Color()
	nextVictim := moved.Type()

	var gain int
	if m.IsEnPassant() {
		gain = PieceValue[Pawn]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		gain = PieceValue[captured.Type()]
	}
	if m.IsPromotion() {
		gain += PieceValue[m.Promotion()] - PieceValue[Pawn]
		nextVictim = m.Promotion()
	}

	score := gain - threshold
	if score < 0 {
		return false
	}
	score -= PieceValue[nextVictim]
	if score >= 0 {
		return true
	}

	occupied := p.AllOccupied &^ SquareBB(from)
	if m.IsEnPassant() {
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occupied &^= SquareBB(capSq)
	}

	diagonalSliders := p.Pieces[White][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Bishop] | p.Pieces[Black][Queen]
	straightSliders := p.Pieces[White][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Rook] | p.Pieces[Black][Queen]
	attackers := p.AttackersTo(to, occupied) & occupied

	side := us.Other()
	for {
		sideAttackers := attackers & p.Occupied[side] & occupied
		sideAttackers &^= p.ComputePinnedFor(side, occupied) &^ Line(to, p.KingSquare[side])

		if sideAttackers == 0 {
			break
		}

		pt, sq := leastValuableAttacker(p, sideAttackers)
		occupied &^= SquareBB(sq)

		// Removing a slider can reveal another one behind it along the same ray.
		attackers |= (BishopAttacks(to, occupied) & diagonalSliders) | (RookAttacks(to, occupied) & straightSliders)
		attackers &= occupied

		score = -score - 1 - PieceValue[pt]
		side = side.Other()

		if score >= 0 {
			// A king can't recapture into an attacked square; if the side to
			// move next still has attackers, the exchange in fact stops here
			// in the other side's favour.
			if pt == King && attackers&p.Occupied[side] != 0 {
				side = side.Other()
			}
			break
		}
	}

	return us != side
}

// leastValuableAttacker returns the cheapest piece type (and its square)
// among the given attacker set.
func leastValuableAttacker(p *Position, attackers Bitboard) (PieceType, Square) {
	for pt := Pawn; pt <= King; pt++ {
		bb := attackers
		for c := White; c <= Black; c++ {
			pieceBB := bb & p.Pieces[c][pt]
			if pieceBB != 0 {
				return pt, pieceBB.LSB()
			}
		}
	}
	return NoPieceType, NoSquare
}
