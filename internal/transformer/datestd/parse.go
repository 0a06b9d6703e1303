package datestd

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

type tokKind uint8

const (
	tokNum tokKind = iota
	tokWord
	tokSep
)

type token struct {
	kind tokKind
	text string // words are lower-cased, whitespace runs become " "
}

func lex(s string) []token {
	var out []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		j := i + 1
		switch {
		case unicode.IsDigit(r):
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			out = append(out, token{kind: tokNum, text: string(rs[i:j])})
		case unicode.IsLetter(r):
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			out = append(out, token{kind: tokWord, text: strings.ToLower(string(rs[i:j]))})
		case unicode.IsSpace(r):
			for j < len(rs) && unicode.IsSpace(rs[j]) {
				j++
			}
			out = append(out, token{kind: tokSep, text: " "})
		default:
			out = append(out, token{kind: tokSep, text: string(r)})
		}
		i = j
	}
	return out
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var ordinals = map[string]bool{"st": true, "nd": true, "rd": true, "th": true}

func isMeridiem(w string) bool { return w == "am" || w == "pm" }

// num is one numeric date component candidate.
type num struct {
	val    int
	digits int
	day    bool // carried an ordinal suffix
}

func (n num) yearLike() bool { return n.digits >= 3 || n.val > 31 }

type fields struct {
	year, day int
	month     time.Month
	yearTwo   bool // year came from a two-digit token
}

// Parse is the tolerant parser. Words it does not recognize are skipped,
// clock times and zone designators are consumed and dropped, and numeric
// day/month ambiguity resolves month first. Components missing from s are
// taken from ref.
func Parse(s string, ref time.Time) (time.Time, bool) {
	toks := lex(s)

	var (
		nums      []num
		nameMonth time.Month
		compact   *fields
	)

	afterTime := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokWord:
			afterTime = false
			if m, ok := months[t.text]; ok {
				if nameMonth != 0 {
					return time.Time{}, false
				}
				nameMonth = m
			}
			// Weekdays, zone names, "T", "of" and any other text are skipped.

		case tokSep:
			if afterTime && (t.text == "+" || t.text == "-") && i+1 < len(toks) && toks[i+1].kind == tokNum {
				i = skipOffset(toks, i+1)
				afterTime = false
				continue
			}
			if t.text != " " {
				afterTime = false
			}

		case tokNum:
			if i+1 < len(toks) && toks[i+1].kind == tokSep && toks[i+1].text == ":" {
				i = skipClock(toks, i)
				afterTime = true
				continue
			}
			afterTime = false
			if w, ok := nextWord(toks, i); ok && isMeridiem(w) {
				continue
			}

			v, err := strconv.Atoi(t.text)
			if err != nil {
				return time.Time{}, false
			}
			switch len(t.text) {
			case 6, 8, 12, 14:
				if compact != nil || len(nums) > 0 {
					return time.Time{}, false
				}
				f, ok := splitCompact(t.text)
				if !ok {
					return time.Time{}, false
				}
				compact = &f
				continue
			}
			if len(t.text) > 4 {
				return time.Time{}, false
			}
			n := num{val: v, digits: len(t.text)}
			if i+1 < len(toks) && toks[i+1].kind == tokWord && ordinals[toks[i+1].text] {
				n.day = true
			}
			nums = append(nums, n)
			if len(nums) > 3 {
				return time.Time{}, false
			}
		}
	}

	var f fields
	switch {
	case compact != nil:
		if len(nums) > 0 || nameMonth != 0 {
			return time.Time{}, false
		}
		f = *compact
	case nameMonth != 0:
		var ok bool
		if f, ok = resolveNamed(nameMonth, nums); !ok {
			return time.Time{}, false
		}
	case len(nums) > 0:
		var ok bool
		if f, ok = resolveNumeric(nums); !ok {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}
	return f.complete(ref)
}

func nextWord(toks []token, i int) (string, bool) {
	j := i + 1
	if j < len(toks) && toks[j].kind == tokSep && toks[j].text == " " {
		j++
	}
	if j < len(toks) && toks[j].kind == tokWord {
		return toks[j].text, true
	}
	return "", false
}

// skipClock consumes hh:mm[:ss[.fff]] starting at i and returns the index of
// the last consumed token.
func skipClock(toks []token, i int) int {
	last := i
	for j := i + 1; j+1 < len(toks); j += 2 {
		if toks[j].kind != tokSep || (toks[j].text != ":" && toks[j].text != ".") || toks[j+1].kind != tokNum {
			break
		}
		last = j + 1
	}
	return last
}

// skipOffset consumes a zone offset such as 05, 0530 or 05:30 starting at i.
func skipOffset(toks []token, i int) int {
	if i+2 < len(toks) && toks[i+1].text == ":" && toks[i+2].kind == tokNum {
		return i + 2
	}
	return i
}

func splitCompact(s string) (fields, bool) {
	atoi := func(p string) int { v, _ := strconv.Atoi(p); return v }
	switch len(s) {
	case 6:
		return fields{year: atoi(s[0:2]), month: time.Month(atoi(s[2:4])), day: atoi(s[4:6]), yearTwo: true}, true
	case 8, 12, 14:
		return fields{year: atoi(s[0:4]), month: time.Month(atoi(s[4:6])), day: atoi(s[6:8])}, true
	}
	return fields{}, false
}

func resolveNamed(m time.Month, nums []num) (fields, bool) {
	f := fields{month: m}
	switch len(nums) {
	case 0:
	case 1:
		if nums[0].yearLike() && !nums[0].day {
			f.setYear(nums[0])
		} else {
			f.day = nums[0].val
		}
	case 2:
		a, b := nums[0], nums[1]
		switch {
		case b.day || (a.yearLike() && !a.day):
			f.setYear(a)
			f.day = b.val
		default:
			f.day = a.val
			f.setYear(b)
		}
	default:
		return fields{}, false
	}
	return f, true
}

func resolveNumeric(nums []num) (fields, bool) {
	var f fields
	switch len(nums) {
	case 1:
		if nums[0].yearLike() {
			f.setYear(nums[0])
		} else {
			f.day = nums[0].val
		}
	case 2:
		a, b := nums[0], nums[1]
		switch {
		case a.yearLike():
			f.setYear(a)
			f.month = time.Month(b.val)
		case b.yearLike():
			f.month = time.Month(a.val)
			f.setYear(b)
		default:
			f.month, f.day = monthFirst(a.val, b.val)
		}
	case 3:
		a, b, c := nums[0], nums[1], nums[2]
		switch {
		case a.yearLike():
			f.setYear(a)
			f.month, f.day = monthFirst(b.val, c.val)
		case b.yearLike() && !c.yearLike():
			f.month = time.Month(a.val)
			f.setYear(b)
			f.day = c.val
		default:
			f.month, f.day = monthFirst(a.val, b.val)
			f.setYear(c)
		}
	default:
		return fields{}, false
	}
	return f, true
}

// monthFirst reads (x, y) as month/day unless x cannot be a month.
func monthFirst(x, y int) (time.Month, int) {
	if x > 12 && y <= 12 {
		return time.Month(y), x
	}
	return time.Month(x), y
}

func (f *fields) setYear(n num) {
	f.year = n.val
	f.yearTwo = n.digits <= 2
}

func (f fields) complete(ref time.Time) (time.Time, bool) {
	year, month, day := f.year, f.month, f.day
	if year == 0 && !f.yearTwo {
		year = ref.Year()
	} else if f.yearTwo {
		year = pivotYear(year, ref.Year())
	}
	if month == 0 {
		month = ref.Month()
	}
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	if year < 1 || year > 9999 {
		return time.Time{}, false
	}
	n := daysIn(year, month)
	if day == 0 {
		day = ref.Day()
		if day > n {
			day = n
		}
	}
	if day < 1 || day > n {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// pivotYear places a two-digit year within fifty years of refYear.
func pivotYear(yy, refYear int) int {
	y := yy + refYear/100*100
	switch {
	case y >= refYear+50:
		y -= 100
	case y < refYear-50:
		y += 100
	}
	return y
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
