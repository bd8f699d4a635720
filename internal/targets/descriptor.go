package targets

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of a migration target.
type Kind string

// Supported target kinds.
const (
	KindApplication Kind = "app"
	KindModule      Kind = "module"
	KindPackage     Kind = "package"
)

const (
	// ApplicationTargetName is the fixed name of the application target.
	ApplicationTargetName = "default"

	descriptorKeySeparatorConstant   = "-"
	descriptorLabelSeparatorConstant = ":"

	invalidDescriptorMessageConstant  = "target reference must look like kind:name"
	invalidDescriptorTemplateConstant = "%w: %q"
	unknownKindTemplateConstant       = "unknown target kind %q"
)

// ErrInvalidDescriptor indicates a target reference could not be parsed.
var ErrInvalidDescriptor = errors.New(invalidDescriptorMessageConstant)

// Descriptor uniquely identifies a migration target by kind and name.
type Descriptor struct {
	Kind Kind
	Name string
}

// Application returns the descriptor of the application target.
func Application() Descriptor {
	return Descriptor{Kind: KindApplication, Name: ApplicationTargetName}
}

// Module returns the descriptor of the named module.
func Module(name string) Descriptor {
	return Descriptor{Kind: KindModule, Name: name}
}

// Package returns the descriptor of the named package.
func Package(name string) Descriptor {
	return Descriptor{Kind: KindPackage, Name: name}
}

// Key returns the execution record key ("module-auth").
func (descriptor Descriptor) Key() string {
	return string(descriptor.Kind) + descriptorKeySeparatorConstant + descriptor.Name
}

// Label returns the human readable reference ("module:auth").
func (descriptor Descriptor) Label() string {
	return string(descriptor.Kind) + descriptorLabelSeparatorConstant + descriptor.Name
}

// String implements fmt.Stringer.
func (descriptor Descriptor) String() string {
	return descriptor.Label()
}

// ParseDescriptor parses a "kind:name" reference. A bare "app" refers to the application target.
func ParseDescriptor(reference string) (Descriptor, error) {
	trimmedReference := strings.TrimSpace(reference)
	if trimmedReference == string(KindApplication) {
		return Application(), nil
	}

	kindPart, namePart, separated := strings.Cut(trimmedReference, descriptorLabelSeparatorConstant)
	kindPart = strings.TrimSpace(kindPart)
	namePart = strings.TrimSpace(namePart)
	if !separated || len(kindPart) == 0 || len(namePart) == 0 {
		return Descriptor{}, fmt.Errorf(invalidDescriptorTemplateConstant, ErrInvalidDescriptor, reference)
	}

	switch Kind(kindPart) {
	case KindApplication, KindModule, KindPackage:
		return Descriptor{Kind: Kind(kindPart), Name: namePart}, nil
	default:
		return Descriptor{}, fmt.Errorf(invalidDescriptorTemplateConstant, ErrInvalidDescriptor, fmt.Sprintf(unknownKindTemplateConstant, kindPart))
	}
}
