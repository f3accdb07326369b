package cacheable

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/aledsdavies/invariant/errs"
)

// Tags are fixed 4-byte ASCII prefixes, one per Kind, making the stream
// self-describing: a decoder never has to guess what follows.
const (
	tagNull   = "none"
	tagBool   = "bool"
	tagInt    = "int_"
	tagStr    = "str_"
	tagDec    = "decm"
	tagMap    = "dict"
	tagSeq    = "list"
	tagTup    = "tupl"
	tagDomain = "icac"
)

// intModeFixed marks an Int encoded as an 8-byte big-endian int64.
// intModeBignum marks an Int encoded as a length-prefixed decimal string,
// used once the value no longer fits in int64.
const (
	intModeFixed  byte = 0
	intModeBignum byte = 1
)

// Defensive bounds against malformed or adversarial input, mirrored after
// the length/depth guards a self-describing binary format needs before it
// allocates anything on the strength of an attacker-controlled length
// prefix.
const (
	maxDepth     = 1000
	maxLength    = 256 * 1024 * 1024 // 256MiB for any single length-prefixed field
	maxContainer = 1 << 20           // max element/entry count per container
)

// DomainRegistry maps a Domain type name to a decoder, so Decode can
// reconstruct concrete Domain types from their encoded type identifier.
type DomainRegistry struct {
	decoders map[string]DomainDecoder
}

// NewDomainRegistry constructs an empty registry.
func NewDomainRegistry() *DomainRegistry {
	return &DomainRegistry{decoders: make(map[string]DomainDecoder)}
}

// Register binds typeName to decode. Re-registering the same name
// overwrites the previous binding; callers that need atomicity should not
// share a DomainRegistry across independently-configured subsystems.
func (r *DomainRegistry) Register(typeName string, decode DomainDecoder) {
	r.decoders[typeName] = decode
}

func (r *DomainRegistry) lookup(typeName string) (DomainDecoder, bool) {
	if r == nil {
		return nil, false
	}
	dec, ok := r.decoders[typeName]
	return dec, ok
}

// Encode writes v's canonical binary encoding to w.
func Encode(w io.Writer, v Value) error {
	return encodeValue(w, v, 0)
}

// EncodeBytes returns v's canonical binary encoding as a byte slice.
func EncodeBytes(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(w io.Writer, v Value, depth int) error {
	if depth > maxDepth {
		return errs.New(errs.NotCacheable, "encode: max nesting depth %d exceeded", maxDepth)
	}
	switch v.kind {
	case KindNull:
		return writeTag(w, tagNull)
	case KindBool:
		if err := writeTag(w, tagBool); err != nil {
			return err
		}
		b := byte(0)
		if v.b {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case KindInt:
		return encodeInt(w, v.i)
	case KindStr:
		if err := writeTag(w, tagStr); err != nil {
			return err
		}
		return writeLenPrefixed(w, []byte(v.s))
	case KindDec:
		if err := writeTag(w, tagDec); err != nil {
			return err
		}
		return writeLenPrefixed(w, []byte(v.d.String()))
	case KindSeq:
		return encodeContainer(w, tagSeq, v.seq, depth)
	case KindTup:
		return encodeContainer(w, tagTup, v.tup, depth)
	case KindMap:
		return encodeMap(w, v.m, depth)
	case KindDomain:
		return encodeDomain(w, v.domain)
	default:
		return errs.New(errs.NotCacheable, "encode: unknown kind %d", v.kind)
	}
}

func encodeInt(w io.Writer, n *big.Int) error {
	if err := writeTag(w, tagInt); err != nil {
		return err
	}
	if n.IsInt64() {
		if _, err := w.Write([]byte{intModeFixed}); err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(n.Int64()))
		_, err := w.Write(buf[:])
		return err
	}
	if _, err := w.Write([]byte{intModeBignum}); err != nil {
		return err
	}
	return writeLenPrefixed(w, []byte(n.String()))
}

func encodeContainer(w io.Writer, tag string, items []Value, depth int) error {
	if err := writeTag(w, tag); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeValue(w, item, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeMap(w io.Writer, m map[string]Value, depth int) error {
	if err := writeTag(w, tagMap); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := writeUint64(w, uint64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeLenPrefixed(w, []byte(k)); err != nil {
			return err
		}
		if err := encodeValue(w, m[k], depth+1); err != nil {
			return err
		}
	}
	return nil
}

func encodeDomain(w io.Writer, d Domain) error {
	if err := writeTag(w, tagDomain); err != nil {
		return err
	}
	if err := writeLenPrefixed(w, []byte(d.TypeName())); err != nil {
		return err
	}
	stream, err := d.MarshalStream()
	if err != nil {
		return fmt.Errorf("encode domain %s: %w", d.TypeName(), err)
	}
	return writeLenPrefixed(w, stream)
}

func writeTag(w io.Writer, tag string) error {
	assertTagLen(tag)
	_, err := w.Write([]byte(tag))
	return err
}

func assertTagLen(tag string) {
	if len(tag) != 4 {
		panic("cacheable: tag must be exactly 4 bytes, got " + tag)
	}
}

func writeUint64(w io.Writer, n uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

func writeLenPrefixed(w io.Writer, data []byte) error {
	if err := writeUint64(w, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Decode reads and validates one value from r. The decoder is total: any
// byte sequence not produced by Encode (truncated input, unknown tag, a
// length or count exceeding the defensive bounds) fails with
// errs.CorruptData naming the offending field.
func Decode(r io.Reader, domains *DomainRegistry) (Value, error) {
	return decodeValue(r, domains, 0)
}

// DecodeBytes decodes exactly one value from data and requires that the
// entire slice was consumed; trailing bytes are themselves corruption,
// since Encode(decode(v)) round-trips to exactly encode(v) with nothing
// left over.
func DecodeBytes(data []byte, domains *DomainRegistry) (Value, error) {
	r := bytes.NewReader(data)
	v, err := Decode(r, domains)
	if err != nil {
		return Value{}, err
	}
	if r.Len() != 0 {
		return Value{}, errs.New(errs.CorruptData, "trailing %d bytes after decoded value", r.Len())
	}
	return v, nil
}

func decodeValue(r io.Reader, domains *DomainRegistry, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, errs.New(errs.CorruptData, "decode: max nesting depth %d exceeded", maxDepth)
	}
	tag, err := readTag(r)
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case tagNull:
		return Null, nil
	case tagBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Value{}, errs.New(errs.CorruptData, "bool: %v", err)
		}
		if b[0] != 0 && b[0] != 1 {
			return Value{}, errs.New(errs.CorruptData, "bool: invalid byte 0x%02x", b[0])
		}
		return Bool(b[0] == 1), nil
	case tagInt:
		return decodeInt(r)
	case tagStr:
		data, err := readLenPrefixed(r, "str")
		if err != nil {
			return Value{}, err
		}
		return Str(string(data)), nil
	case tagDec:
		data, err := readLenPrefixed(r, "dec")
		if err != nil {
			return Value{}, err
		}
		dv, derr := NewDecimalFromString(string(data))
		if derr != nil {
			return Value{}, errs.New(errs.CorruptData, "dec: %v", derr)
		}
		return Dec(dv), nil
	case tagSeq:
		items, err := decodeContainer(r, domains, depth, "seq")
		if err != nil {
			return Value{}, err
		}
		return Seq(items), nil
	case tagTup:
		items, err := decodeContainer(r, domains, depth, "tup")
		if err != nil {
			return Value{}, err
		}
		return Tup(items), nil
	case tagMap:
		m, err := decodeMap(r, domains, depth)
		if err != nil {
			return Value{}, err
		}
		return Map(m), nil
	case tagDomain:
		return decodeDomain(r, domains, depth)
	default:
		return Value{}, errs.New(errs.CorruptData, "unknown type tag %q", tag)
	}
}

func decodeInt(r io.Reader) (Value, error) {
	var mode [1]byte
	if _, err := io.ReadFull(r, mode[:]); err != nil {
		return Value{}, errs.New(errs.CorruptData, "int: mode: %v", err)
	}
	switch mode[0] {
	case intModeFixed:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Value{}, errs.New(errs.CorruptData, "int: fixed: %v", err)
		}
		return Int(int64(binary.BigEndian.Uint64(buf[:]))), nil
	case intModeBignum:
		data, err := readLenPrefixed(r, "int.bignum")
		if err != nil {
			return Value{}, err
		}
		n, ok := new(big.Int).SetString(string(data), 10)
		if !ok {
			return Value{}, errs.New(errs.CorruptData, "int: invalid bignum literal %q", data)
		}
		return BigInt(n), nil
	default:
		return Value{}, errs.New(errs.CorruptData, "int: unknown mode 0x%02x", mode[0])
	}
}

func decodeContainer(r io.Reader, domains *DomainRegistry, depth int, field string) ([]Value, error) {
	count, err := readUint64(r)
	if err != nil {
		return nil, errs.New(errs.CorruptData, "%s: count: %v", field, err)
	}
	if count > maxContainer {
		return nil, errs.New(errs.CorruptData, "%s: count %d exceeds maximum %d", field, count, maxContainer)
	}
	items := make([]Value, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := decodeValue(r, domains, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		items = append(items, v)
	}
	return items, nil
}

func decodeMap(r io.Reader, domains *DomainRegistry, depth int) (map[string]Value, error) {
	count, err := readUint64(r)
	if err != nil {
		return nil, errs.New(errs.CorruptData, "map: count: %v", err)
	}
	if count > maxContainer {
		return nil, errs.New(errs.CorruptData, "map: count %d exceeds maximum %d", count, maxContainer)
	}
	m := make(map[string]Value, count)
	prevKey := ""
	for i := uint64(0); i < count; i++ {
		keyBytes, err := readLenPrefixed(r, "map.key")
		if err != nil {
			return nil, err
		}
		key := string(keyBytes)
		if i > 0 && key <= prevKey {
			return nil, errs.New(errs.CorruptData, "map: keys out of canonical order at entry %d", i)
		}
		prevKey = key
		v, err := decodeValue(r, domains, depth+1)
		if err != nil {
			return nil, fmt.Errorf("map[%q]: %w", key, err)
		}
		m[key] = v
	}
	return m, nil
}

func decodeDomain(r io.Reader, domains *DomainRegistry, depth int) (Value, error) {
	typeNameBytes, err := readLenPrefixed(r, "domain.type_name")
	if err != nil {
		return Value{}, err
	}
	typeName := string(typeNameBytes)
	stream, err := readLenPrefixed(r, "domain.stream")
	if err != nil {
		return Value{}, err
	}
	decode, ok := domains.lookup(typeName)
	if !ok {
		return Value{}, errs.New(errs.CorruptData, "domain: unregistered type %q", typeName)
	}
	d, err := decode(stream)
	if err != nil {
		return Value{}, errs.New(errs.CorruptData, "domain %s: %v", typeName, err)
	}
	_ = depth
	return DomainValue(d), nil
}

func readTag(r io.Reader) (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return "", errs.New(errs.CorruptData, "truncated input: expected type tag")
		}
		return "", errs.New(errs.CorruptData, "read tag: %v", err)
	}
	return string(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func readLenPrefixed(r io.Reader, field string) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, errs.New(errs.CorruptData, "%s: length: %v", field, err)
	}
	if n > maxLength {
		return nil, errs.New(errs.CorruptData, "%s: length %d exceeds maximum %d", field, n, maxLength)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errs.New(errs.CorruptData, "%s: data: %v", field, err)
	}
	return buf, nil
}
