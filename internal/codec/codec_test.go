package codec

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/internal/wire"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

type Point struct {
	X int32
	Y int32
}

type Scalars struct {
	B    bool
	I    int
	I8   int8
	I16  int16
	I64  int64
	U    uint
	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	UP   uintptr
	F32  float32
	F64  float64
	C64  complex64
	C128 complex128
}

type Person struct {
	Name     string
	Nickname *string
	Age      *int32
	Tags     []string
	Scores   [3]float64
	Avatar   []byte
	Home     *Point
	Points   []Point
	Friends  []*Person
}

type Shape struct {
	ID   int32
	Name string
}

type Polygon struct {
	Shape
	Vertices []Point
}

type Square struct {
	Polygon
	Side  float64
	cache []byte `objcodec:"-"`
}

type hidden struct {
	visible int32
	label   string
}

type Excluded struct {
	A     int32
	Scrap string `objcodec:"-"`
	B     int32
}

type Node struct {
	Value int32
	Next  *Node
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	desc, err := schema.Describe(reflect.TypeOf(v))
	require.NoError(t, err)
	w := wire.NewWriter(0)
	require.NoError(t, NewEncoder(w, 0).Encode(desc, reflect.ValueOf(v)))
	return w.Bytes()
}

func decodeAs(t *testing.T, data []byte, typ reflect.Type) (any, error) {
	t.Helper()
	desc, err := schema.Describe(typ)
	require.NoError(t, err)
	r := wire.NewReader(bytes.NewReader(data), wire.Limits{})
	target := reflect.New(typ).Elem()
	if err := NewDecoder(r, 0).Decode(desc, target); err != nil {
		return nil, err
	}
	assert.Equal(t, len(data), r.Consumed(), "decoder must consume every byte")
	return target.Interface(), nil
}

func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	got, err := decodeAs(t, encode(t, v), reflect.TypeOf(v))
	require.NoError(t, err)
	return got.(T)
}

func TestPointBytes(t *testing.T) {
	data := encode(t, Point{X: 3, Y: -7})
	assert.Equal(t, []byte{0x00, 0x03, 0x00, 0x00, 0x00, 0xF9, 0xFF, 0xFF, 0xFF}, data)
	assert.Equal(t, Point{X: 3, Y: -7}, roundTrip(t, Point{X: 3, Y: -7}))
}

func TestPrimitiveRoundTrip(t *testing.T) {
	v := Scalars{
		B: true, I: math.MinInt64, I8: -8, I16: math.MaxInt16, I64: -1,
		U: math.MaxUint64, U8: 0xAB, U16: 0xBEEF, U32: math.MaxUint32, U64: 1 << 63, UP: 0xDEAD,
		F32: 1.25, F64: math.Pi, C64: complex(1, -2), C128: complex(math.E, math.Inf(1)),
	}
	data := encode(t, v)
	// 存在标志 + 各字段定长字节之和
	assert.Len(t, data, 1+1+8+1+2+8+8+1+2+4+8+8+4+8+8+16)
	if diff := cmp.Diff(v, roundTrip(t, v)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, int8(-3), roundTrip(t, int8(-3)))
	assert.Equal(t, []byte{0xFD}, encode(t, int8(-3)))
	assert.Equal(t, float32(0.5), roundTrip(t, float32(0.5)))
}

func TestPersonRoundTrip(t *testing.T) {
	nick := "al"
	age := int32(42)
	friend := &Person{Name: "bob", Tags: []string{}}
	v := Person{
		Name:     "alice",
		Nickname: &nick,
		Age:      &age,
		Tags:     []string{"a", "", "ccc"},
		Scores:   [3]float64{1, 2, 3},
		Avatar:   []byte{1, 2, 3, 4},
		Home:     &Point{X: 1, Y: 2},
		Points:   []Point{{1, 1}, {-1, -1}},
		Friends:  []*Person{friend, nil},
	}
	if diff := cmp.Diff(v, roundTrip(t, v)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	empty := Person{}
	got := roundTrip(t, empty)
	assert.Nil(t, got.Nickname)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.Tags)
	assert.Nil(t, got.Avatar)
	assert.Nil(t, got.Home)
}

func TestAbsentConsumesOneByte(t *testing.T) {
	cases := []any{
		(*Point)(nil),
		(*string)(nil),
		(*int64)(nil),
		[]int32(nil),
		(*[]string)(nil),
	}
	for _, v := range cases {
		data := encode(t, v)
		assert.Equal(t, []byte{wire.FlagAbsent}, data, "%T", v)
		got, err := decodeAs(t, data, reflect.TypeOf(v))
		require.NoError(t, err)
		assert.True(t, reflect.ValueOf(got).IsNil(), "%T", v)
	}
}

func TestOptionalPrimitive(t *testing.T) {
	n := int32(5)
	assert.Equal(t, []byte{0x00, 0x05, 0x00, 0x00, 0x00}, encode(t, &n))
	assert.Equal(t, int32(5), *roundTrip(t, &n))
}

func TestOptionalComposite(t *testing.T) {
	// 指针本身不贡献字节
	assert.Equal(t, encode(t, Point{X: 1, Y: 2}), encode(t, &Point{X: 1, Y: 2}))
	assert.Equal(t, encode(t, "x"), encode(t, ptr("x")))
}

func TestEmptyText(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x00}, encode(t, ""))
	assert.Equal(t, "", roundTrip(t, ""))
}

func TestBytesBulk(t *testing.T) {
	blob := []byte("hello")
	data := encode(t, blob)
	assert.Equal(t, append([]byte{0x00, 0x05, 0x00, 0x00, 0x00}, blob...), data)
	assert.Equal(t, blob, roundTrip(t, blob))

	arr := [4]byte{9, 8, 7, 6}
	assert.Equal(t, []byte{0x00, 0x04, 0x00, 0x00, 0x00, 9, 8, 7, 6}, encode(t, arr))
	assert.Equal(t, arr, roundTrip(t, arr))
	assert.Equal(t, [0]byte{}, roundTrip(t, [0]byte{}))
}

func TestArrayLengthMismatch(t *testing.T) {
	data := encode(t, []int32{1, 2})
	_, err := decodeAs(t, data, reflect.TypeOf([3]int32{}))
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
}

func TestInheritanceChain(t *testing.T) {
	v := Square{
		Polygon: Polygon{
			Shape:    Shape{ID: 7, Name: "sq"},
			Vertices: []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
		},
		Side:  1,
		cache: []byte("dropped"),
	}
	data := encode(t, v)
	// Square、Polygon、Shape 各自带一个存在标志，父类型字段先于子类型字段
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}, data[:7])

	got := roundTrip(t, v)
	assert.Equal(t, int32(7), got.ID)
	assert.Equal(t, "sq", got.Name)
	assert.Equal(t, v.Vertices, got.Vertices)
	assert.Equal(t, 1.0, got.Side)
	assert.Nil(t, got.cache)
}

func TestParentMarkedAbsent(t *testing.T) {
	data := encode(t, Polygon{Shape: Shape{ID: 1}})
	data[1] = wire.FlagAbsent
	_, err := decodeAs(t, data, reflect.TypeOf(Polygon{}))
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
}

func TestExclusionSymmetry(t *testing.T) {
	v := Excluded{A: 1, Scrap: "never written", B: 2}
	data := encode(t, v)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}, data)
	assert.Equal(t, Excluded{A: 1, B: 2}, roundTrip(t, v))
}

func TestUnexportedFields(t *testing.T) {
	v := hidden{visible: 11, label: "secret"}
	assert.Equal(t, v, roundTrip(t, v))
}

func TestFieldOrderMismatch(t *testing.T) {
	type nameFirst struct {
		Name string
		N    int32
	}
	type numberFirst struct {
		N    int32
		Name string
	}
	data := encode(t, nameFirst{Name: "abcde", N: 1})
	// 0x05 被当作 int32 的一部分，随后读到的 'c' 不是合法的存在标志
	_, err := decodeAs(t, data, reflect.TypeOf(numberFirst{}))
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)

	type yx struct {
		Y int32
		X int32
	}
	// 同类型字段调换顺序无法被检测，值按位置交换
	got, err := decodeAs(t, encode(t, Point{X: 1, Y: 2}), reflect.TypeOf(yx{}))
	require.NoError(t, err)
	assert.Equal(t, yx{Y: 1, X: 2}, got)
}

func TestDepthGuard(t *testing.T) {
	n := &Node{Value: 1}
	n.Next = n
	desc := schema.MustDescribe(reflect.TypeOf(n))
	w := wire.NewWriter(0)
	err := NewEncoder(w, 64).Encode(desc, reflect.ValueOf(n))
	assert.ErrorIs(t, err, merr.ErrDepthExceeded)

	// 合法的深链在解码端同样受限
	var head *Node
	for i := 0; i < 40; i++ {
		head = &Node{Value: int32(i), Next: head}
	}
	data := encode(t, head)
	r := wire.NewReader(bytes.NewReader(data), wire.Limits{})
	target := reflect.New(desc.Type).Elem()
	err = NewDecoder(r, 16).Decode(desc, target)
	assert.ErrorIs(t, err, merr.ErrDepthExceeded)

	got := roundTrip(t, head)
	count := 0
	for cur := got; cur != nil; cur = cur.Next {
		count++
	}
	assert.Equal(t, 40, count)
}

func TestUnsupportedPrimitive(t *testing.T) {
	unknown := schema.PrimitiveKind(200)
	err := writePrimitive(wire.NewWriter(0), unknown, reflect.ValueOf(0))
	assert.ErrorIs(t, err, merr.ErrUnsupportedPrimitive)

	r := wire.NewReader(bytes.NewReader([]byte{0}), wire.Limits{})
	err = readPrimitive(r, unknown, reflect.New(reflect.TypeOf(0)).Elem())
	assert.ErrorIs(t, err, merr.ErrUnsupportedPrimitive)

	for _, pk := range schema.PrimitiveKinds() {
		assert.Contains(t, primitiveCodecs, pk)
	}
}

func TestTruncatedStream(t *testing.T) {
	data := encode(t, Person{Name: "alice", Tags: []string{"x", "y"}})
	for i := 0; i < len(data); i++ {
		_, err := decodeAs(t, data[:i], reflect.TypeOf(Person{}))
		assert.ErrorIs(t, err, merr.ErrStructuralViolation, "prefix %d", i)
	}
}

func TestIncompleteInstance(t *testing.T) {
	desc := schema.MustDescribe(reflect.TypeOf(Square{}))
	inst := newInstance(desc)
	inst.mark(desc, 1)
	_, err := inst.finalize()
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)

	for _, level := range desc.Chain() {
		for _, f := range level.Serializable() {
			inst.mark(level, f.Index)
		}
	}
	_, err = inst.finalize()
	assert.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
