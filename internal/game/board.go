package game

// CategoryTag is the bullying category painted on a board cell.
type CategoryTag string

const (
	CategoryFisico      CategoryTag = "fisico"
	CategoryVerbal      CategoryTag = "verbal"
	CategoryRelacional  CategoryTag = "relacional"
	CategoryVirtual     CategoryTag = "virtual"
	CategoryPreconceito CategoryTag = "preconceito"
)

// Categories in legend order.
var Categories = []CategoryTag{
	CategoryFisico,
	CategoryVerbal,
	CategoryRelacional,
	CategoryVirtual,
	CategoryPreconceito,
}

var categoryColors = map[CategoryTag]string{
	CategoryFisico:      "#EF4444",
	CategoryVerbal:      "#F59E0B",
	CategoryRelacional:  "#8B5CF6",
	CategoryVirtual:     "#3B82F6",
	CategoryPreconceito: "#DC2626",
}

var categoryIcons = map[CategoryTag]string{
	CategoryFisico:      "👊",
	CategoryVerbal:      "💬",
	CategoryRelacional:  "👥",
	CategoryVirtual:     "💻",
	CategoryPreconceito: "🚫",
}

// Color returns the hex colour for c, grey for unknown tags.
func (c CategoryTag) Color() string {
	if v, ok := categoryColors[c]; ok {
		return v
	}
	return "#6B7280"
}

// Icon returns the emoji for c, a question mark for unknown tags.
func (c CategoryTag) Icon() string {
	if v, ok := categoryIcons[c]; ok {
		return v
	}
	return "❓"
}

func (c CategoryTag) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// BoardCell is one square of the serpentine track.
type BoardCell struct {
	Number   int         `json:"number"`
	Category CategoryTag `json:"category"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
}

// Layout holds the grid shape and the pixel constants used for cell coordinates.
type Layout struct {
	Rows     int     `json:"rows"`
	Cols     int     `json:"cols"`
	CellSize float64 `json:"cell_size"`
	Spacing  float64 `json:"spacing"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
}

// DefaultLayout is the 5x10 board of the original game.
var DefaultLayout = Layout{Rows: 5, Cols: 10, CellSize: 90, Spacing: 18, StartX: 40, StartY: 40}

// WithGrid returns a copy of l with a different row/column count.
func (l Layout) WithGrid(rows, cols int) Layout {
	l.Rows, l.Cols = rows, cols
	return l
}

// CategoryDeck repeats every category totalCells/len(categories) times. A
// remainder is dealt one per category in order, so counts never differ by more
// than one.
func CategoryDeck(totalCells int, categories []CategoryTag) []CategoryTag {
	if totalCells <= 0 || len(categories) == 0 {
		return nil
	}
	deck := make([]CategoryTag, 0, totalCells)
	per := totalCells / len(categories)
	for _, c := range categories {
		for i := 0; i < per; i++ {
			deck = append(deck, c)
		}
	}
	for i := 0; len(deck) < totalCells; i++ {
		deck = append(deck, categories[i%len(categories)])
	}
	return deck
}

// GenerateBoard shuffles a balanced category deck and lays it out row by row,
// even rows left to right and odd rows right to left, numbering cells 1..N in
// walking order. Cells beyond Rows*Cols continue on extra rows.
func GenerateBoard(r Rand, totalCells int, categories []CategoryTag, layout Layout) []BoardCell {
	deck := CategoryDeck(totalCells, categories)
	if len(deck) == 0 {
		return nil
	}
	Shuffle(r, deck)

	cols := layout.Cols
	if cols <= 0 {
		cols = totalCells
	}
	step := layout.CellSize + layout.Spacing
	cells := make([]BoardCell, 0, totalCells)
	for row := 0; len(cells) < totalCells; row++ {
		for i := 0; i < cols && len(cells) < totalCells; i++ {
			col := i
			if row%2 == 1 {
				col = cols - 1 - i
			}
			n := len(cells) + 1
			cells = append(cells, BoardCell{
				Number:   n,
				Category: deck[n-1],
				X:        layout.StartX + float64(col)*step,
				Y:        layout.StartY + float64(row)*step,
			})
		}
	}
	return cells
}
