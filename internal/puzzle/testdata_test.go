package puzzle

const sampleCSV = `PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl,OpeningTags
00008,r6k/pp2r2p/4Rp1Q/3p4/8/1N1P2R1/PqP2bPP/7K b - - 0 24,f2g3 e6e7 b2b1 b3c1 b1c1 h6c1,1807,75,95,8585,crushing hangingPiece long middlegame,https://lichess.org/787zsVup/black#48,
0000D,5rk1/1p3ppp/pq3b2/8/8/1P1Q1N2/P4PPP/3R2K1 w - - 2 27,d3d6 f8d8 d6d8 f6d8,1426,500,2,0,advantage endgame short,https://lichess.org/F8M8OS71#53,
broken,not enough columns
0009B,r2qr1k1/b1p2ppp/pp4n1/P1P1p3/4P1n1/B2P2Pb/3NBP1P/RN1QR1K1 b - - 1 16,b6c5 e2g4 h3g4 d1g4,1112,74,87,569,advantage middlegame short,https://lichess.org/4MWQCxQ6/black#32,Kings_Pawn_Game Kings_Pawn_Game_Leonardis_Variation
`

func samplePuzzles() []Puzzle {
	return []Puzzle{
		{
			PuzzleID: "00008", FEN: "r6k/pp2r2p/4Rp1Q/3p4/8/1N1P2R1/PqP2bPP/7K b - - 0 24",
			Moves: "f2g3 e6e7 b2b1 b3c1 b1c1 h6c1", Rating: 1807, RatingDeviation: 75, Popularity: 95, NbPlays: 8585,
			Themes: "crushing hangingPiece long middlegame", GameURL: "https://lichess.org/787zsVup/black#48",
		},
		{
			PuzzleID: "0000D", FEN: "5rk1/1p3ppp/pq3b2/8/8/1P1Q1N2/P4PPP/3R2K1 w - - 2 27",
			Moves: "d3d6 f8d8 d6d8 f6d8", Rating: 1426, RatingDeviation: 500, Popularity: 2, NbPlays: 0,
			Themes: "advantage endgame short", GameURL: "https://lichess.org/F8M8OS71#53",
		},
		{
			PuzzleID: "0009B", FEN: "r2qr1k1/b1p2ppp/pp4n1/P1P1p3/4P1n1/B2P2Pb/3NBP1P/RN1QR1K1 b - - 1 16",
			Moves: "b6c5 e2g4 h3g4 d1g4", Rating: 1112, RatingDeviation: 74, Popularity: 87, NbPlays: 569,
			Themes: "advantage middlegame short", GameURL: "https://lichess.org/4MWQCxQ6/black#32",
			OpeningTags: "Kings_Pawn_Game Kings_Pawn_Game_Leonardis_Variation",
		},
	}
}

// Black moves first, then the solver promotes on b8.
var promotionPuzzle = Puzzle{
	PuzzleID: "promo", FEN: "7k/1P6/8/8/8/8/8/K7 b - - 0 1", Moves: "h8g8 b7b8q", Rating: 600,
}

// Rb8 and Rc8 both mate after a7a6.
var twoMatesPuzzle = Puzzle{
	PuzzleID: "mates", FEN: "6k1/p4ppp/8/8/8/8/8/1RR3K1 b - - 0 1", Moves: "a7a6 c1c8", Rating: 700,
}
