package opslevel

import (
	"slices"

	"github.com/agentstation/opslevel/internal/utils/ptr"
	"github.com/agentstation/opslevel/pkg/catalog"
	"github.com/agentstation/opslevel/pkg/constants"
)

// PrimaryLanguage returns the language with the highest usage. Ties go to
// the entry listed first. It reports false for an empty list.
func PrimaryLanguage(languages []Language) (Language, bool) {
	if len(languages) == 0 {
		return Language{}, false
	}
	primary := languages[0]
	for _, l := range languages[1:] {
		if l.Usage > primary.Usage {
			primary = l
		}
	}
	return primary, true
}

// ResolveFramework returns the framework of entity. The framework annotation
// wins whenever the key is present, even with an empty value. Otherwise the
// first tag, in tag order, that appears in frameworks is used.
func ResolveFramework(entity *catalog.Entity, frameworks []string) (string, bool) {
	if entity == nil {
		return "", false
	}
	if fw, ok := entity.Metadata.Annotation(constants.FrameworkAnnotation); ok {
		return fw, true
	}
	for _, tag := range entity.Metadata.Tags {
		if slices.Contains(frameworks, tag) {
			return tag, true
		}
	}
	return "", false
}

// BuildServiceUpdate derives the serviceUpdate input for entity from its
// repository languages and the configured frameworks.
func BuildServiceUpdate(entity *catalog.Entity, languages []Language, frameworks []string) ServiceUpdateInput {
	var in ServiceUpdateInput
	if entity != nil {
		in.Alias = entity.Metadata.Name
	}
	if lang, ok := PrimaryLanguage(languages); ok {
		in.Language = ptr.String(lang.Name)
	}
	if fw, ok := ResolveFramework(entity, frameworks); ok {
		in.Framework = ptr.String(fw)
	}
	return in
}
