package collection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"assetdesk/pkg/domain"
)

// DefaultMaxAttempts bounds how often a random policy retries on collision.
const DefaultMaxAttempts = 32

const alnumAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Taken answers identity membership questions about the current collection.
type Taken interface {
	Has(id string) bool
	IDs() []string
}

// IdentityPolicy derives and validates record identities for one entity kind.
// Generate must never return an identity for which taken.Has is true.
type IdentityPolicy interface {
	Generate(kind domain.EntityKind, taken Taken) (string, error)
	Validate(candidate string) error
}

// RandomSource returns a uniformly distributed integer in [0, n).
type RandomSource func(n int) int

func (r RandomSource) or() RandomSource {
	if r == nil {
		return rand.IntN
	}
	return r
}

func attemptsOr(n int) int {
	if n <= 0 {
		return DefaultMaxAttempts
	}
	return n
}

func firstFree(kind domain.EntityKind, taken Taken, attempts int, next func() string) (string, error) {
	attempts = attemptsOr(attempts)
	for i := 0; i < attempts; i++ {
		if id := next(); !taken.Has(id) {
			return id, nil
		}
	}
	return "", domain.ErrIdentityExhausted{Entity: kind, Attempts: attempts}
}

func matchOrErr(re *regexp.Regexp, candidate, want string) error {
	if !re.MatchString(candidate) {
		return fmt.Errorf("identity %q does not match %s", candidate, want)
	}
	return nil
}

// SequencePolicy issues PREFIX-NNN identities, one above the highest existing
// sequence number. It cannot collide; once the highest sequence reaches
// math.MaxInt the space is exhausted.
type SequencePolicy struct {
	Prefix string
	Width  int
}

func (p SequencePolicy) width() int {
	if p.Width <= 0 {
		return 3
	}
	return p.Width
}

func (p SequencePolicy) sequence(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, p.Prefix+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Generate implements IdentityPolicy.
func (p SequencePolicy) Generate(kind domain.EntityKind, taken Taken) (string, error) {
	highest := 0
	for _, id := range taken.IDs() {
		if n, ok := p.sequence(id); ok && n > highest {
			highest = n
		}
	}
	if highest == math.MaxInt {
		return "", domain.ErrIdentityExhausted{Entity: kind, Attempts: 1}
	}
	id := fmt.Sprintf("%s-%0*d", p.Prefix, p.width(), highest+1)
	if taken.Has(id) {
		return "", domain.ErrIdentityConflict{Entity: kind, ID: id}
	}
	return id, nil
}

// Validate implements IdentityPolicy.
func (p SequencePolicy) Validate(candidate string) error {
	re := regexp.MustCompile(fmt.Sprintf(`^%s-\d{%d,}$`, regexp.QuoteMeta(p.Prefix), p.width()))
	return matchOrErr(re, candidate, fmt.Sprintf("%s-%s", p.Prefix, strings.Repeat("N", p.width())))
}

// RandomPolicy issues PREFIX-NNN or PREFIX-YYYY-NNN identities from a random
// number, retrying against the collection on collision.
type RandomPolicy struct {
	Prefix      string
	Digits      int
	WithYear    bool
	Now         func() time.Time
	Rand        RandomSource
	MaxAttempts int
}

func (p RandomPolicy) digits() int {
	if p.Digits <= 0 {
		return 3
	}
	return p.Digits
}

func (p RandomPolicy) head() string {
	if !p.WithYear {
		return p.Prefix + "-"
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return fmt.Sprintf("%s-%04d-", p.Prefix, now().Year())
}

// Generate implements IdentityPolicy.
func (p RandomPolicy) Generate(kind domain.EntityKind, taken Taken) (string, error) {
	head := p.head()
	digits := p.digits()
	space := 1
	for i := 0; i < digits; i++ {
		space *= 10
	}
	rnd := p.Rand.or()
	return firstFree(kind, taken, p.MaxAttempts, func() string {
		return fmt.Sprintf("%s%0*d", head, digits, rnd(space))
	})
}

// Validate implements IdentityPolicy.
func (p RandomPolicy) Validate(candidate string) error {
	year := ""
	want := p.Prefix + "-"
	if p.WithYear {
		year = `\d{4}-`
		want += "YYYY-"
	}
	re := regexp.MustCompile(fmt.Sprintf(`^%s-%s\d{%d}$`, regexp.QuoteMeta(p.Prefix), year, p.digits()))
	return matchOrErr(re, candidate, want+strings.Repeat("N", p.digits()))
}

// TimestampPolicy issues PREFIX-TTTRRR identities: the last three base-36
// digits of the creation time in milliseconds followed by a random suffix.
type TimestampPolicy struct {
	Prefix      string
	SuffixLen   int
	Now         func() time.Time
	Rand        RandomSource
	MaxAttempts int
}

const timestampFragmentLen = 3

func (p TimestampPolicy) suffixLen() int {
	if p.SuffixLen <= 0 {
		return 3
	}
	return p.SuffixLen
}

// Generate implements IdentityPolicy.
func (p TimestampPolicy) Generate(kind domain.EntityKind, taken Taken) (string, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	stamp := strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36))
	if len(stamp) > timestampFragmentLen {
		stamp = stamp[len(stamp)-timestampFragmentLen:]
	}
	stamp = strings.Repeat("0", timestampFragmentLen-len(stamp)) + stamp
	rnd := p.Rand.or()
	return firstFree(kind, taken, p.MaxAttempts, func() string {
		return p.Prefix + "-" + stamp + randomAlnum(rnd, p.suffixLen())
	})
}

// Validate implements IdentityPolicy.
func (p TimestampPolicy) Validate(candidate string) error {
	n := timestampFragmentLen + p.suffixLen()
	re := regexp.MustCompile(fmt.Sprintf(`^%s-[0-9A-Z]{%d}$`, regexp.QuoteMeta(p.Prefix), n))
	return matchOrErr(re, candidate, fmt.Sprintf("%s-%s", p.Prefix, strings.Repeat("X", n)))
}

// AlnumPolicy issues fully random uppercase alphanumeric identities.
type AlnumPolicy struct {
	Length      int
	Rand        RandomSource
	MaxAttempts int
}

func (p AlnumPolicy) length() int {
	if p.Length <= 0 {
		return 6
	}
	return p.Length
}

// Generate implements IdentityPolicy.
func (p AlnumPolicy) Generate(kind domain.EntityKind, taken Taken) (string, error) {
	rnd := p.Rand.or()
	return firstFree(kind, taken, p.MaxAttempts, func() string {
		return randomAlnum(rnd, p.length())
	})
}

// Validate implements IdentityPolicy.
func (p AlnumPolicy) Validate(candidate string) error {
	re := regexp.MustCompile(fmt.Sprintf(`^[0-9A-Z]{%d}$`, p.length()))
	return matchOrErr(re, candidate, fmt.Sprintf("%d uppercase alphanumerics", p.length()))
}

// FieldPolicy accepts caller-supplied identities matching Pattern. It never
// generates identities.
type FieldPolicy struct {
	Pattern     *regexp.Regexp
	Description string
}

// Generate implements IdentityPolicy.
func (FieldPolicy) Generate(domain.EntityKind, Taken) (string, error) {
	return "", domain.ErrIdentityRequired
}

// Validate implements IdentityPolicy.
func (p FieldPolicy) Validate(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return domain.ErrIdentityRequired
	}
	if p.Pattern == nil {
		return nil
	}
	want := p.Description
	if want == "" {
		want = p.Pattern.String()
	}
	return matchOrErr(p.Pattern, candidate, want)
}

func randomAlnum(rnd RandomSource, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alnumAlphabet[rnd(len(alnumAlphabet))])
	}
	return b.String()
}
