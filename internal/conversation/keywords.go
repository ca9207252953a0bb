package conversation

import (
	"fmt"
	"strings"
)

// Keywords are the control words recognized in free text. A message triggers a
// keyword only when its trimmed text equals one of the entries exactly.
type Keywords struct {
	Start  []string
	List   []string
	Cancel []string
}

func DefaultKeywords() Keywords {
	return Keywords{
		Start:  []string{"リマインド"},
		List:   []string{"一覧", "リスト"},
		Cancel: []string{"キャンセル", "やめる"},
	}
}

func (k Keywords) Validate() error {
	if len(k.Start) == 0 {
		return fmt.Errorf("at least one start keyword is required")
	}

	seen := make(map[string]string)
	for name, set := range map[string][]string{"start": k.Start, "list": k.List, "cancel": k.Cancel} {
		for _, kw := range set {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				return fmt.Errorf("%s keywords must not be blank", name)
			}
			if other, ok := seen[kw]; ok && other != name {
				return fmt.Errorf("keyword %q is used for both %s and %s", kw, other, name)
			}
			seen[kw] = name
		}
	}
	return nil
}

// PrimaryStart is the start keyword shown to users in help texts.
func (k Keywords) PrimaryStart() string {
	if len(k.Start) == 0 {
		return ""
	}
	return k.Start[0]
}

func (k Keywords) IsStart(text string) bool  { return matchAny(k.Start, text) }
func (k Keywords) IsList(text string) bool   { return matchAny(k.List, text) }
func (k Keywords) IsCancel(text string) bool { return matchAny(k.Cancel, text) }

func matchAny(set []string, text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, kw := range set {
		if trimmed == strings.TrimSpace(kw) {
			return true
		}
	}
	return false
}
