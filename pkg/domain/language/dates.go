package language

import (
	"regexp"
	"strconv"
	"time"
)

// ISODate is the layout of every date the resolver emits.
const ISODate = "2006-01-02"

var explicitDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)

type relativeRule struct {
	name    string
	pattern *regexp.Regexp
	resolve func(match []string, ref time.Time) time.Time
}

// Evaluated in order after explicit dates; "pasado mañana" must precede "mañana".
var relativeRules = []relativeRule{
	{
		name:    "day-after-tomorrow",
		pattern: regexp.MustCompile(`\bpasado\s+ma(?:ñ|n)ana\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return ref.AddDate(0, 0, 2) },
	},
	{
		name:    "tomorrow",
		pattern: regexp.MustCompile(`\bma(?:ñ|n)ana\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return ref.AddDate(0, 0, 1) },
	},
	{
		name:    "today",
		pattern: regexp.MustCompile(`\bhoy\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return ref },
	},
	{
		name:    "in-days",
		pattern: regexp.MustCompile(`\ben\s+(\d+|` + numberWordPattern + `)\s+dias?\b`),
		resolve: func(m []string, ref time.Time) time.Time { return ref.AddDate(0, 0, parseCount(m[1])) },
	},
	{
		name:    "in-weeks",
		pattern: regexp.MustCompile(`\ben\s+(\d+|` + numberWordPattern + `)\s+semanas?\b`),
		resolve: func(m []string, ref time.Time) time.Time { return ref.AddDate(0, 0, 7*parseCount(m[1])) },
	},
	{
		name:    "next-week",
		pattern: regexp.MustCompile(`\b(?:(?:proxima|siguiente)\s+semana|semana\s+(?:que\s+viene|proxima|siguiente))\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return ref.AddDate(0, 0, 7) },
	},
	{
		name:    "in-months",
		pattern: regexp.MustCompile(`\ben\s+(\d+|` + numberWordPattern + `)\s+mes(?:es)?\b`),
		resolve: func(m []string, ref time.Time) time.Time { return addMonths(ref, parseCount(m[1])) },
	},
	{
		name:    "next-month",
		pattern: regexp.MustCompile(`\b(?:(?:proximo|siguiente)\s+mes|mes\s+(?:que\s+viene|proximo|siguiente))\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return addMonths(ref, 1) },
	},
	{
		name:    "end-of-year",
		pattern: regexp.MustCompile(`\bfin(?:al(?:es)?)?\s+del?\s+a(?:ñ|n)o\b`),
		resolve: func(_ []string, ref time.Time) time.Time {
			return time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location())
		},
	},
	{
		name:    "end-of-month",
		pattern: regexp.MustCompile(`\bfin(?:al(?:es)?)?\s+del?\s+mes\b`),
		resolve: func(_ []string, ref time.Time) time.Time { return endOfMonth(ref.Year(), ref.Month(), ref.Location()) },
	},
	{
		name:    "weekday",
		pattern: regexp.MustCompile(`\b(lunes|martes|miercoles|jueves|viernes|sabado|domingo)\b`),
		resolve: func(m []string, ref time.Time) time.Time {
			days := (int(weekdays[m[1]]) - int(ref.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return ref.AddDate(0, 0, days)
		},
	},
	{
		name:    "named-month",
		pattern: regexp.MustCompile(`\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b`),
		resolve: func(m []string, ref time.Time) time.Time {
			month := months[m[1]]
			year := ref.Year()
			if month < ref.Month() {
				year++
			}
			return endOfMonth(year, month, ref.Location())
		},
	},
}

const numberWordPattern = `un|una|uno|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|quince|veinte|treinta`

var numberWords = map[string]int{
	"un": 1, "una": 1, "uno": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10, "quince": 15,
	"veinte": 20, "treinta": 30,
}

var weekdays = map[string]time.Weekday{
	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "jueves": time.Thursday, "viernes": time.Friday,
	"sabado": time.Saturday,
}

var months = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June, "julio": time.July,
	"agosto": time.August, "septiembre": time.September, "setiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

// ResolveDate maps the first date expression in text to an ISO date relative
// to ref. Explicit D/M[/Y] dates win over relative phrases wherever they
// appear. The second return value is false when text holds no usable date.
func ResolveDate(text string, ref time.Time) (string, bool) {
	t, ok := ResolveTime(text, ref)
	if !ok {
		return "", false
	}
	return t.Format(ISODate), true
}

// ResolveTime is ResolveDate returning the calendar day as midnight in ref's location.
func ResolveTime(text string, ref time.Time) (time.Time, bool) {
	folded := Normalize(text)
	day := truncateDay(ref)

	for _, m := range explicitDate.FindAllStringSubmatch(folded, -1) {
		if t, ok := explicitTime(m, day); ok {
			return t, true
		}
	}

	for _, rule := range relativeRules {
		if m := rule.pattern.FindStringSubmatch(folded); m != nil {
			return rule.resolve(m, day), true
		}
	}
	return time.Time{}, false
}

// DatePhraseIndex returns the folded byte offset of the earliest date
// expression in folded text, or -1.
func DatePhraseIndex(folded string) int {
	first := -1
	consider := func(loc []int) {
		if loc != nil && (first == -1 || loc[0] < first) {
			first = loc[0]
		}
	}
	consider(explicitDate.FindStringIndex(folded))
	for _, rule := range relativeRules {
		consider(rule.pattern.FindStringIndex(folded))
	}
	return first
}

// ParseISODate parses a YYYY-MM-DD string in loc.
func ParseISODate(value string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(ISODate, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func explicitTime(m []string, ref time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	year := ref.Year()
	if m[3] != "" {
		y, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
		switch {
		case len(m[3]) == 4:
			year = y
		case y < 50:
			year = 2000 + y
		default:
			year = 1900 + y
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t, ok := calendarDay(year, month, day, ref.Location())
	if ok && m[3] == "" && t.Before(ref) {
		// A yearless day already behind us means the next occurrence.
		t, ok = calendarDay(year+1, month, day, ref.Location())
	}
	return t, ok
}

// calendarDay rejects dates that time.Date would normalize, such as 31/2.
func calendarDay(year, month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func parseCount(word string) int {
	if n, err := strconv.Atoi(word); err == nil {
		return n
	}
	return numberWords[word]
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// addMonths moves t by n months, clamping the day to the target month's length.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := endOfMonth(first.Year(), first.Month(), t.Location()).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
