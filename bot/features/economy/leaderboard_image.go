package economy

import (
	"bytes"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/utils"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// tableColumn defines a column in the leaderboard table
type tableColumn struct {
	Header    string
	XPosition int
	ColorRGB  [3]float64
}

// tableRow represents a single row of data
type tableRow struct {
	Rank int
	Data []string
}

// tableStyle defines the visual style of the table
type tableStyle struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	PodiumBG  [3][4]float64 // RGBA for 1st, 2nd and 3rd place rows
}

// LeaderboardImageGenerator renders the leaderboard as a PNG table
type LeaderboardImageGenerator struct {
	style tableStyle
}

// NewLeaderboardImageGenerator creates a new image generator with default style
func NewLeaderboardImageGenerator() *LeaderboardImageGenerator {
	return &LeaderboardImageGenerator{
		style: tableStyle{
			Width:     400,
			MinHeight: 120,
			Padding:   15,
			RowHeight: 26,
			PodiumBG: [3][4]float64{
				{1, 0.84, 0, 0.1},     // Gold
				{0.8, 0.8, 0.8, 0.08}, // Silver
				{0.8, 0.5, 0.2, 0.06}, // Bronze
			},
		},
	}
}

// Generate renders the ranked accounts. names maps user ids to display names.
func (g *LeaderboardImageGenerator) Generate(entries []*entities.LeaderboardEntry, names map[int64]string, sortBy entities.LeaderboardSort) ([]byte, error) {
	p := g.style.Padding
	columns := []tableColumn{
		{Header: "#", XPosition: p, ColorRGB: [3]float64{0.85, 0.85, 0.9}},
		{Header: "User", XPosition: p + 25, ColorRGB: [3]float64{1.0, 1.0, 1.0}},
		{Header: "Cash", XPosition: p + 170, ColorRGB: [3]float64{0.85, 1.0, 0.85}},
		{Header: "Bank", XPosition: p + 240, ColorRGB: [3]float64{0.85, 0.85, 1.0}},
		{Header: "Total", XPosition: p + 310, ColorRGB: [3]float64{1.0, 0.9, 0.6}},
	}
	// Brighten the column the board is sorted by
	sorted := map[entities.LeaderboardSort]int{
		entities.LeaderboardSortCash:  2,
		entities.LeaderboardSortBank:  3,
		entities.LeaderboardSortTotal: 4,
	}[sortBy]
	if sorted > 0 {
		columns[sorted].Header += " ▼"
	}

	rows := make([]tableRow, len(entries))
	for i, entry := range entries {
		rows[i] = tableRow{
			Rank: entry.Rank,
			Data: []string{
				fmt.Sprintf("%d", entry.Rank),
				truncateName(names[entry.UserID], entry.UserID),
				utils.FormatShortNotation(entry.Cash),
				utils.FormatShortNotation(entry.Bank),
				utils.FormatShortNotation(entry.Total),
			},
		}
	}

	return g.generateTable(columns, rows)
}

func truncateName(name string, userID int64) string {
	if name == "" {
		name = fmt.Sprintf("User%d", userID)
	}
	runes := []rune(name)
	if len(runes) > 18 {
		return string(runes[:17]) + "…"
	}
	return name
}

// generateTable creates the actual image
func (g *LeaderboardImageGenerator) generateTable(columns []tableColumn, rows []tableRow) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("row_count", len(rows)).
			Debug("Leaderboard image generation completed")
	}()

	// Header (25px) + header padding (30px) + rows + bottom padding (15px)
	height := 25 + 30 + (len(rows) * g.style.RowHeight) + 15
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}

	dc := gg.NewContext(g.style.Width, height)
	dc.SetFillRule(gg.FillRuleWinding)

	// Gradient background with subtle texture
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		baseR := 0.02 + t*0.03
		baseG := 0.02 + t*0.05
		baseB := 0.05 + t*0.1
		for x := 0; x < g.style.Width; x++ {
			noise := (float64((x*i)%7) - 3.5) / 255.0
			dc.SetRGB(baseR+noise, baseG+noise, baseB+noise)
			dc.SetPixel(x, i)
		}
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	rankFace, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := float64(25)

	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.style.Width), 20)
	dc.Fill()

	dc.SetRGB(1.0, 1.0, 1.0)
	for _, col := range columns {
		drawSharpText(dc, col.Header, float64(col.XPosition), y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.style.Width), y+8)
	dc.Stroke()

	y += 30
	for i, row := range rows {
		if i < len(g.style.PodiumBG) {
			color := g.style.PodiumBG[i]
			dc.SetRGBA(color[0], color[1], color[2], color[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.style.Width), float64(g.style.RowHeight))
		dc.Fill()

		if i < len(g.style.PodiumBG) {
			drawCoinIcon(dc, float64(g.style.Padding+3), y-4, i)
			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(rankFace)
			dc.DrawStringAnchored(row.Data[0], float64(g.style.Padding+3), y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			dc.SetRGB(columns[0].ColorRGB[0], columns[0].ColorRGB[1], columns[0].ColorRGB[2])
			drawSharpText(dc, row.Data[0], float64(columns[0].XPosition), y)
		}

		for j := 1; j < len(columns) && j < len(row.Data); j++ {
			col := columns[j]
			dc.SetRGB(col.ColorRGB[0], col.ColorRGB[1], col.ColorRGB[2])
			drawSharpText(dc, row.Data[j], float64(col.XPosition), y)
		}

		y += float64(g.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// drawCoinIcon draws a podium coin, gold, silver or bronze by place
func drawCoinIcon(dc *gg.Context, x, y float64, place int) {
	var red, green, blue float64
	switch place {
	case 0:
		red, green, blue = 1, 0.84, 0
	case 1:
		red, green, blue = 0.75, 0.75, 0.75
	default:
		red, green, blue = 0.8, 0.5, 0.2
	}

	// Rim
	dc.SetRGB(red*0.7, green*0.7, blue*0.7)
	dc.DrawCircle(x, y, 6.5)
	dc.Fill()

	// Face
	dc.SetRGB(red, green, blue)
	dc.DrawCircle(x, y, 5)
	dc.Fill()
}

// drawSharpText draws text with enhanced sharpness using multiple rendering passes
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	// A faint shadow improves perceived sharpness
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}
