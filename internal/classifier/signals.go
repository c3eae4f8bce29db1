package classifier

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "sjsage522/taglikeworker/pkg/errors"
)

// LikeSignal is the observed approval count of an item. LikeUnavailable
// means the action control was not found, usually because the item was
// already actioned.
type LikeSignal int

// LikeUnavailable is the LikeSignal for a missing action control
const LikeUnavailable LikeSignal = -1

// PromoScore counts near-duplicate keyword pairs in an item's caption
type PromoScore int

// minTokenLength is the shortest token taking part in the promo score
const minTokenLength = 4

// Strategy describes where the action control and its neighbouring text
// live in the item page. Only one version is kept; when the site layout
// changes, the strategy is replaced rather than forked.
type Strategy struct {
	Version string

	// ControlSelector matches the icon of the action control in its
	// not-yet-actioned state together with ControlFill.
	ControlSelector string
	ControlFill     string

	// AncestorDepth is how many parents above the control hold the section
	// whose children carry the like text and the caption.
	AncestorDepth int
	LikeTextChild int
	CaptionChild  int

	// FirstLikeMarker is shown instead of a count when nobody liked yet
	FirstLikeMarker string
}

// CurrentStrategy locates the heart icon by its aria label and fill colour
var CurrentStrategy = Strategy{
	Version:         "2020-01-aria-label",
	ControlSelector: `svg[aria-label="Like"]`,
	ControlFill:     "#262626",
	AncestorDepth:   3,
	LikeTextChild:   1,
	CaptionChild:    2,
	FirstLikeMarker: "Be the first",
}

// Snapshot is what the page reports about the action control in one
// evaluation. Both signals are read from the same snapshot.
type Snapshot struct {
	Found    bool   `json:"found"`
	LikeText string `json:"likeText"`
	Caption  string `json:"caption"`
}

// locateExpr evaluates to the action control element or null
func (s Strategy) locateExpr() string {
	return fmt.Sprintf(`(function() {
  for (const icon of document.querySelectorAll(%s)) {
    if (icon.getAttribute("fill") === %s) {
      return icon.parentElement;
    }
  }
  return null;
})()`, strconv.Quote(s.ControlSelector), strconv.Quote(s.ControlFill))
}

// SnapshotScript returns the script producing a Snapshot
func (s Strategy) SnapshotScript() string {
	return fmt.Sprintf(`(function() {
  const control = %s;
  if (control === null) {
    return {found: false, likeText: "", caption: ""};
  }
  let section = control;
  for (let i = 0; i < %d && section !== null; i++) {
    section = section.parentElement;
  }
  const text = (i) => (section && section.children[i] ? section.children[i].innerText : "");
  return {found: true, likeText: text(%d), caption: text(%d)};
})()`, s.locateExpr(), s.AncestorDepth, s.LikeTextChild, s.CaptionChild)
}

// ApproveScript returns the script clicking the action control. It
// evaluates to false when the control is gone.
func (s Strategy) ApproveScript() string {
	return fmt.Sprintf(`(function() {
  const control = %s;
  if (control === null) {
    return false;
  }
  control.click();
  return true;
})()`, s.locateExpr())
}

// ExtractLikeSignal reads the like count from a snapshot
func (s Strategy) ExtractLikeSignal(snap Snapshot) (LikeSignal, error) {
	if !snap.Found {
		return LikeUnavailable, nil
	}
	return ParseLikeText(snap.LikeText, s.FirstLikeMarker)
}

// ExtractPromoScore scores the caption of a snapshot
func (s Strategy) ExtractPromoScore(snap Snapshot) PromoScore {
	return ScorePromo(snap.Caption)
}

// ParseLikeText turns the text next to the action control into a count.
// Text containing marker counts as zero; otherwise the leading token with
// thousands separators removed must be a non-negative integer.
func ParseLikeText(text, marker string) (LikeSignal, error) {
	if marker != "" && strings.Contains(text, marker) {
		return 0, nil
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, apperrors.NewParsing("like text", "empty like text", nil)
	}

	token := strings.ReplaceAll(fields[0], ",", "")
	count, err := strconv.Atoi(token)
	if err != nil {
		return 0, apperrors.NewParsing("like text", fmt.Sprintf("unexpected like token %q", fields[0]), err)
	}
	if count < 0 {
		return 0, apperrors.NewParsing("like text", fmt.Sprintf("negative like count %d", count), nil)
	}
	return LikeSignal(count), nil
}

func isTokenSeparator(r rune) bool {
	switch r {
	case ' ', ',', '-', '_', '#', '\n':
		return true
	}
	return false
}

// Tokenize splits caption text into the tokens long enough to be scored
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.FieldsFunc(text, isTokenSeparator) {
		if utf8.RuneCountInString(field) >= minTokenLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// ScorePromo counts token pairs where one token contains the other
func ScorePromo(text string) PromoScore {
	return scoreTokens(Tokenize(text))
}

func scoreTokens(tokens []string) PromoScore {
	var score PromoScore
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			a, b := tokens[i], tokens[j]
			if strings.Contains(b, a) || strings.Contains(a, b) {
				score++
			}
		}
	}
	return score
}
