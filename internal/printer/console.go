package printer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/pkg/record"
)

// ColorScheme color scheme
type ColorScheme struct {
	MethodGET     *color.Color
	MethodPOST    *color.Color
	MethodPUT     *color.Color
	MethodDELETE  *color.Color
	MethodPATCH   *color.Color
	MethodDefault *color.Color
	CriteriaKey   *color.Color
	CriteriaValue *color.Color
	Separator     *color.Color
	Payload       *color.Color
	Meta          *color.Color
	Index         *color.Color
}

// NewColorScheme creates a new color scheme
func NewColorScheme() *ColorScheme {
	return &ColorScheme{
		MethodGET:     color.New(color.FgBlue, color.Bold),
		MethodPOST:    color.New(color.FgGreen, color.Bold),
		MethodPUT:     color.New(color.FgYellow, color.Bold),
		MethodDELETE:  color.New(color.FgRed, color.Bold),
		MethodPATCH:   color.New(color.FgMagenta, color.Bold),
		MethodDefault: color.New(color.FgWhite, color.Bold),
		CriteriaKey:   color.New(color.FgCyan),
		CriteriaValue: color.New(color.FgWhite),
		Separator:     color.New(color.FgYellow, color.Bold),
		Payload:       color.New(color.FgWhite),
		Meta:          color.New(color.FgHiBlack),
		Index:         color.New(color.FgHiBlue),
	}
}

// ConsolePrinter renders store contents for humans.
type ConsolePrinter struct {
	colorScheme *ColorScheme
	logger      logger.Logger
}

// NewConsolePrinter creates a new console printer.
func NewConsolePrinter(log logger.Logger, noColor bool) *ConsolePrinter {
	if noColor {
		color.NoColor = true
	}
	return &ConsolePrinter{
		colorScheme: NewColorScheme(),
		logger:      log,
	}
}

// PrintStore prints the store header followed by one block per record.
func (p *ConsolePrinter) PrintStore(info StoreInfo, records []*record.Record) error {
	width := p.getTerminalWidth()
	separator := strings.Repeat("-", width)

	p.colorScheme.Separator.Println(separator)
	fmt.Printf("Store: %s\n", info.Path)
	p.colorScheme.Meta.Printf("%s, written %s, %d record(s)\n",
		humanize.Bytes(uint64(info.Size)),
		humanize.Time(info.ModTime),
		len(records),
	)
	p.colorScheme.Separator.Println(separator)

	if len(records) == 0 {
		fmt.Println("No mock responses registered.")
		return nil
	}

	for i, rec := range records {
		p.printRecord(i+1, rec, width)
	}
	return nil
}

func (p *ConsolePrinter) printRecord(index int, rec *record.Record, width int) {
	fmt.Println()
	p.colorScheme.Index.Printf("#%d ", index)
	p.printMethodAndURL(rec.Criteria)
	fmt.Println()

	for _, key := range sortedKeys(rec.Criteria) {
		if key == "method" || key == "url" {
			continue
		}
		fmt.Print("  ")
		p.colorScheme.CriteriaKey.Printf("%s: ", key)
		p.colorScheme.CriteriaValue.Printf("%v\n", rec.Criteria[key])
	}

	preview := p.payloadPreview(rec.Payload, width-4)
	p.colorScheme.Payload.Printf("  %s\n", preview)
}

func (p *ConsolePrinter) printMethodAndURL(criteria record.Criteria) {
	method, _ := criteria["method"].(string)
	url, _ := criteria["url"].(string)
	if method == "" {
		method = "*"
	}
	if url == "" {
		url = "*"
	}
	p.methodColor(method).Print(strings.ToUpper(method))
	fmt.Printf(" %s", url)
}

func (p *ConsolePrinter) methodColor(method string) *color.Color {
	switch strings.ToUpper(method) {
	case "GET":
		return p.colorScheme.MethodGET
	case "POST":
		return p.colorScheme.MethodPOST
	case "PUT":
		return p.colorScheme.MethodPUT
	case "DELETE":
		return p.colorScheme.MethodDELETE
	case "PATCH":
		return p.colorScheme.MethodPATCH
	default:
		return p.colorScheme.MethodDefault
	}
}

// payloadPreview renders the payload as compact JSON truncated to one line.
// Truncation counts runes, not bytes, so a multibyte value is never cut
// mid-sequence.
func (p *ConsolePrinter) payloadPreview(payload map[string]interface{}, maxWidth int) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	preview := string(encoded)
	if runes := []rune(preview); maxWidth > 3 && len(runes) > maxWidth {
		preview = string(runes[:maxWidth-3]) + "..."
	}
	return preview
}

// getTerminalWidth gets the current terminal width with fallback
func (p *ConsolePrinter) getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	if width < 40 {
		return 40
	}
	if width > 150 {
		return 150
	}
	return width
}

func sortedKeys(criteria record.Criteria) []string {
	keys := make([]string, 0, len(criteria))
	for key := range criteria {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
