package notation

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// CheckPromotion reports the promotion piece encoded in a coordinate move such
// as "e7e8q". Moves of four characters or fewer carry no promotion. Any fifth
// character other than r, n or b is read as a queen; this is not a validator.
func CheckPromotion(notation string) (nchess.PieceType, bool) {
	if len(notation) <= 4 {
		return nchess.NoPieceType, false
	}
	switch notation[4] {
	case 'r':
		return nchess.Rook, true
	case 'n':
		return nchess.Knight, true
	case 'b':
		return nchess.Bishop, true
	default:
		return nchess.Queen, true
	}
}

// SameMove compares two coordinate moves by their squares and promotion piece.
func SameMove(played, expected string) bool {
	p := strings.ToLower(strings.TrimSpace(played))
	e := strings.ToLower(strings.TrimSpace(expected))
	if len(p) < 4 || len(e) < 4 {
		return false
	}
	if p[:4] != e[:4] {
		return false
	}
	pp, _ := CheckPromotion(p)
	ep, _ := CheckPromotion(e)
	return pp == ep
}

// PromotionSuffix is the lowercase letter UCI uses for a promotion piece.
func PromotionSuffix(pt nchess.PieceType) string {
	switch pt {
	case nchess.Queen:
		return "q"
	case nchess.Rook:
		return "r"
	case nchess.Knight:
		return "n"
	case nchess.Bishop:
		return "b"
	default:
		return ""
	}
}
