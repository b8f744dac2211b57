package types

import (
	"fmt"
	"strings"

	"luasema/internal/source"
)

// Owner is the key a member set is stored under: a named type, a bare global
// table or an anonymous table constructor.
type Owner string

const (
	globalPrefix = "_G."
	tablePrefix  = "{}@"
)

// NamedOwner keys the members of a named type by its fully qualified name.
func NamedOwner(fqn string) Owner { return Owner(fqn) }

// GlobalOwner keys the members of a global variable.
func GlobalOwner(name string) Owner { return Owner(globalPrefix + name) }

// TableOwner keys the members of an anonymous table constructor.
func TableOwner(elem source.ElementID) Owner {
	return Owner(fmt.Sprintf("%s%d:%d", tablePrefix, elem.Doc, elem.Pos))
}

// IsGlobal reports whether the owner is a global variable key.
func (o Owner) IsGlobal() bool { return strings.HasPrefix(string(o), globalPrefix) }

// IsTable reports whether the owner is an anonymous table key.
func (o Owner) IsTable() bool { return strings.HasPrefix(string(o), tablePrefix) }

// IsNamed reports whether the owner is a named type key.
func (o Owner) IsNamed() bool { return o != "" && !o.IsGlobal() && !o.IsTable() }

// Name returns the type or global name behind the key.
func (o Owner) Name() string {
	if o.IsGlobal() {
		return strings.TrimPrefix(string(o), globalPrefix)
	}
	return string(o)
}

// Qualify joins a namespace and a name.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
