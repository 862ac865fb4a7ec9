package format

import (
	"encoding/binary"
	"fmt"
)

// Struct flag bits.
const (
	StructFlagAbstract     = 0x01
	StructFlagSerializable = 0x02
	StructFlagComponent    = 0x04
	StructFlagEntity       = 0x08
)

// Conversion flags name the physical unit a numeric property is expressed in.
const (
	ConversionNone = iota
	ConversionDistance
	ConversionSpeed
	ConversionMass
	ConversionTime
	ConversionAngle
	ConversionTemperature
	ConversionPower
	ConversionForce
	ConversionCurrency
)

var conversionNames = []string{
	"none", "distance", "speed", "mass", "time",
	"angle", "temperature", "power", "force", "currency",
}

// ConversionName returns the unit name for a conversion flag, or "none" for
// values outside the known set.
func ConversionName(c uint32) string {
	if int(c) < len(conversionNames) {
		return conversionNames[c]
	}
	return "none"
}

// StructDef describes one record shape. Property ranges refer to the shared
// property table; the flattened, inheritance-resolved list lives on Catalog.
type StructDef struct {
	ID            uint32
	Name          string
	ParentID      uint32 // NoneID when the struct has no parent
	PropertyStart uint32
	PropertyCount uint32
	Size          uint32
	Flags         uint32
}

// HasParent reports whether the struct inherits from another struct.
func (s *StructDef) HasParent() bool { return s.ParentID != NoneID }

// IsAbstract reports the abstract flag.
func (s *StructDef) IsAbstract() bool { return s.Flags&StructFlagAbstract != 0 }

// IsComponent reports the component flag.
func (s *StructDef) IsComponent() bool { return s.Flags&StructFlagComponent != 0 }

// IsEntity reports the entity flag.
func (s *StructDef) IsEntity() bool { return s.Flags&StructFlagEntity != 0 }

// PropertyDef describes one field of a struct.
type PropertyDef struct {
	ID         uint32
	Name       string
	Type       DataType
	IsArray    bool
	RawType    uint32 // original wire tag, kept for unknown-type reporting
	StructID   uint32 // NoneID unless Type is TypeStruct (or an array of it)
	Conversion uint32
}

// SchemaCycleError reports a cycle in a struct's parent chain.
type SchemaCycleError struct {
	StructID uint32
	Name     string
}

func (e *SchemaCycleError) Error() string {
	return fmt.Sprintf("struct %q (id %d): cyclic parent chain", e.Name, e.StructID)
}

// DanglingStructError reports a struct or property referring to a struct id
// that does not exist.
type DanglingStructError struct {
	Referrer string
	StructID uint32
}

func (e *DanglingStructError) Error() string {
	return fmt.Sprintf("%s refers to unknown struct id %d", e.Referrer, e.StructID)
}

// PropertyRangeError reports a struct whose declared property range falls
// outside the property table.
type PropertyRangeError struct {
	StructID uint32
	Start    uint32
	Count    uint32
	Total    int
}

func (e *PropertyRangeError) Error() string {
	return fmt.Sprintf("struct id %d: property range [%d,%d) outside table of %d",
		e.StructID, e.Start, e.Start+e.Count, e.Total)
}

// Catalog holds all struct and property definitions with inheritance resolved.
// Built once at open time, immutable afterwards, and consulted on every record
// decode.
type Catalog struct {
	structs   []StructDef
	props     []PropertyDef
	flattened [][]uint32 // per struct id: property indexes, base-class fields first
	byName    map[string]uint32
}

// DecodeCatalog parses the struct and property sections, resolves names
// against the string table, flattens inheritance, and validates the schema.
// Any violation (cycle, dangling reference, bad range) fails the whole open.
func DecodeCatalog(structSec, propSec []byte, strings *StringTable) (*Catalog, error) {
	structCount := len(structSec) / StructDefSize
	propCount := len(propSec) / PropertyDefSize

	c := &Catalog{
		structs:   make([]StructDef, structCount),
		props:     make([]PropertyDef, propCount),
		flattened: make([][]uint32, structCount),
		byName:    make(map[string]uint32, structCount),
	}

	for i := range c.props {
		b := propSec[i*PropertyDefSize:]
		nameOff := binary.LittleEndian.Uint32(b[0:4])
		name, err := strings.Lookup(nameOff)
		if err != nil {
			return nil, fmt.Errorf("property %d name: %w", i, err)
		}
		typ, isArray := ParseDataType(binary.LittleEndian.Uint32(b[4:8]))
		c.props[i] = PropertyDef{
			ID:         uint32(i),
			Name:       name,
			Type:       typ,
			IsArray:    isArray,
			RawType:    binary.LittleEndian.Uint32(b[4:8]),
			StructID:   binary.LittleEndian.Uint32(b[8:12]),
			Conversion: binary.LittleEndian.Uint32(b[12:16]),
		}
	}

	for i := range c.structs {
		b := structSec[i*StructDefSize:]
		nameOff := binary.LittleEndian.Uint32(b[0:4])
		name, err := strings.Lookup(nameOff)
		if err != nil {
			return nil, fmt.Errorf("struct %d name: %w", i, err)
		}
		c.structs[i] = StructDef{
			ID:            uint32(i),
			Name:          name,
			ParentID:      binary.LittleEndian.Uint32(b[4:8]),
			PropertyStart: binary.LittleEndian.Uint32(b[8:12]),
			PropertyCount: binary.LittleEndian.Uint32(b[12:16]),
			Size:          binary.LittleEndian.Uint32(b[16:20]),
			Flags:         binary.LittleEndian.Uint32(b[20:24]),
		}
		c.byName[name] = uint32(i)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := c.flattenAll(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for i := range c.structs {
		s := &c.structs[i]
		if s.HasParent() && int64(s.ParentID) >= int64(len(c.structs)) {
			return &DanglingStructError{Referrer: fmt.Sprintf("struct %q", s.Name), StructID: s.ParentID}
		}
		if int64(s.PropertyStart)+int64(s.PropertyCount) > int64(len(c.props)) {
			return &PropertyRangeError{StructID: s.ID, Start: s.PropertyStart, Count: s.PropertyCount, Total: len(c.props)}
		}
	}
	for i := range c.props {
		p := &c.props[i]
		if p.Type == TypeStruct && p.StructID == NoneID {
			return &DanglingStructError{Referrer: fmt.Sprintf("property %q", p.Name), StructID: NoneID}
		}
		if p.StructID != NoneID && int64(p.StructID) >= int64(len(c.structs)) {
			return &DanglingStructError{Referrer: fmt.Sprintf("property %q", p.Name), StructID: p.StructID}
		}
	}
	return nil
}

// flattenAll computes each struct's full property list: the parent's flattened
// list followed by the struct's own declarations. A visited set along the
// parent walk catches cycles.
func (c *Catalog) flattenAll() error {
	for id := range c.structs {
		chain := []uint32{}
		visited := make(map[uint32]bool)
		cur := uint32(id)
		for {
			if visited[cur] {
				s := &c.structs[id]
				return &SchemaCycleError{StructID: s.ID, Name: s.Name}
			}
			visited[cur] = true
			chain = append(chain, cur)
			s := &c.structs[cur]
			if !s.HasParent() {
				break
			}
			cur = s.ParentID
		}

		var flat []uint32
		for i := len(chain) - 1; i >= 0; i-- {
			s := &c.structs[chain[i]]
			for p := s.PropertyStart; p < s.PropertyStart+s.PropertyCount; p++ {
				flat = append(flat, p)
			}
		}
		c.flattened[id] = flat
	}
	return nil
}

// Struct returns the definition for a struct id.
func (c *Catalog) Struct(id uint32) (*StructDef, bool) {
	if int64(id) >= int64(len(c.structs)) {
		return nil, false
	}
	return &c.structs[id], true
}

// StructByName returns the definition with the given name.
func (c *Catalog) StructByName(name string) (*StructDef, bool) {
	id, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.structs[id], true
}

// StructNames returns all struct names in definition order.
func (c *Catalog) StructNames() []string {
	names := make([]string, len(c.structs))
	for i := range c.structs {
		names[i] = c.structs[i].Name
	}
	return names
}

// NumStructs returns the number of struct definitions.
func (c *Catalog) NumStructs() int { return len(c.structs) }

// NumProperties returns the number of property definitions.
func (c *Catalog) NumProperties() int { return len(c.props) }

// Property returns the property definition at the given table index.
func (c *Catalog) Property(idx uint32) *PropertyDef {
	return &c.props[idx]
}

// Flattened returns the inheritance-resolved property indexes for a struct,
// base-class fields first. The returned slice is shared and must not be
// modified.
func (c *Catalog) Flattened(id uint32) ([]uint32, bool) {
	if int64(id) >= int64(len(c.flattened)) {
		return nil, false
	}
	return c.flattened[id], true
}
