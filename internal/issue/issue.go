// SPDX-License-Identifier: MPL-2.0

package issue

import "errors"

// Kind classifies an error.
type Kind int

const (
	// KindUsage covers invalid command lines: unknown options and option
	// combinations that cannot work, such as overwriting standard input.
	KindUsage Kind = iota + 1
	// KindIO covers open, read, write, rename and directory failures.
	KindIO
	// KindName is reported when no distinct temp-file name can be built.
	KindName
	// KindSetup covers configuration and output setup failures.
	KindSetup
)

var (
	// ErrUsage matches every KindUsage error through errors.Is.
	ErrUsage = errors.New("usage error")
	// ErrIO matches every KindIO error through errors.Is.
	ErrIO = errors.New("i/o error")
	// ErrName matches every KindName error through errors.Is.
	ErrName = errors.New("name error")
	// ErrSetup matches every KindSetup error through errors.Is.
	ErrSetup = errors.New("setup error")
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindIO:
		return "io"
	case KindName:
		return "name"
	case KindSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error matching k, or nil for an unknown kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindUsage:
		return ErrUsage
	case KindIO:
		return ErrIO
	case KindName:
		return ErrName
	case KindSetup:
		return ErrSetup
	default:
		return nil
	}
}
