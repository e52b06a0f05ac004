package schema

import (
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

type celsius float64

type point struct {
	X int32
	Y int32
}

type animal struct {
	Name string
}

type dog struct {
	animal
	Breed string
	cache string `objcodec:"-"`
}

type puppy struct {
	dog
	AgeWeeks int32
}

type node struct {
	Value int32
	Next  *node
}

type withMap struct {
	M map[string]int
}

type withExcludedMap struct {
	ID int32
	M  map[string]int `objcodec:"-"`
}

type embeddedLater struct {
	ID int32
	point
}

func TestClassify(t *testing.T) {
	cases := []struct {
		v    any
		kind Kind
	}{
		{true, KindPrimitive},
		{int8(1), KindPrimitive},
		{uint64(1), KindPrimitive},
		{uintptr(1), KindPrimitive},
		{complex64(1), KindPrimitive},
		{celsius(1), KindPrimitive},
		{"s", KindText},
		{[]int32{}, KindSequence},
		{[3]string{}, KindSequence},
		{(*point)(nil), KindOptional},
		{(*int32)(nil), KindOptional},
		{(**point)(nil), KindInvalid},
		{point{}, KindComposite},
		{map[string]int{}, KindInvalid},
		{make(chan int), KindInvalid},
		{func() {}, KindInvalid},
		{unsafe.Pointer(nil), KindInvalid},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, Classify(reflect.TypeOf(c.v)), "%T", c.v)
	}
	assert.Equal(t, KindInvalid, Classify(nil))
	assert.Equal(t, KindInvalid, Classify(reflect.TypeOf((*any)(nil)).Elem()))
}

func TestPrimitiveTable(t *testing.T) {
	kinds := PrimitiveKinds()
	assert.Len(t, kinds, int(primitiveCount)-1)
	for _, pk := range kinds {
		assert.NotZero(t, pk.Size(), pk.String())
	}
	assert.Equal(t, 8, PrimitiveInt.Size())
	assert.Equal(t, 16, PrimitiveComplex128.Size())
	assert.Equal(t, PrimitiveFloat64, PrimitiveOf(reflect.TypeOf(celsius(0))))
	assert.Equal(t, PrimitiveNone, PrimitiveOf(reflect.TypeOf("")))
	assert.Equal(t, "primitive(200)", PrimitiveKind(200).String())
}

func TestDescribeComposite(t *testing.T) {
	d, err := Describe(reflect.TypeOf(point{}))
	require.NoError(t, err)
	assert.Equal(t, KindComposite, d.Kind)
	assert.Nil(t, d.Parent)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, "X", d.Fields[0].Name)
	assert.Equal(t, PrimitiveInt32, d.Fields[1].Desc.Primitive)
	assert.Equal(t, 2, d.Slots)

	again, err := Describe(reflect.TypeOf(point{}))
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestDescribeInheritance(t *testing.T) {
	d, err := Describe(reflect.TypeOf(puppy{}))
	require.NoError(t, err)
	require.NotNil(t, d.Parent)
	require.NotNil(t, d.Parent.Parent)
	assert.Nil(t, d.Parent.Parent.Parent)
	assert.Equal(t, 0, d.ParentIndex)

	chain := d.Chain()
	require.Len(t, chain, 3)
	assert.Equal(t, reflect.TypeOf(animal{}), chain[0].Type)
	assert.Equal(t, reflect.TypeOf(puppy{}), chain[2].Type)

	dogDesc := d.Parent
	require.Len(t, dogDesc.Fields, 2)
	assert.True(t, dogDesc.Fields[1].Excluded)
	assert.Nil(t, dogDesc.Fields[1].Desc)
	assert.Len(t, dogDesc.Serializable(), 1)
	// Name + Breed + AgeWeeks
	assert.Equal(t, 3, d.Slots)
}

func TestDescribeEmbeddedNotFirst(t *testing.T) {
	d, err := Describe(reflect.TypeOf(embeddedLater{}))
	require.NoError(t, err)
	assert.Nil(t, d.Parent)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, KindComposite, d.Fields[1].Desc.Kind)
}

func TestDescribeRecursive(t *testing.T) {
	d, err := Describe(reflect.TypeOf(node{}))
	require.NoError(t, err)
	next := d.Fields[1].Desc
	assert.Equal(t, KindOptional, next.Kind)
	assert.Same(t, d, next.Elem)
}

func TestDescribeSequence(t *testing.T) {
	d, err := Describe(reflect.TypeOf([]byte{}))
	require.NoError(t, err)
	assert.True(t, d.IsBytes())
	assert.True(t, d.IsSlice())

	d, err = Describe(reflect.TypeOf([4]string{}))
	require.NoError(t, err)
	assert.False(t, d.IsBytes())
	assert.False(t, d.IsSlice())
	assert.Equal(t, 4, d.Len)
}

func TestDescribeUnsupported(t *testing.T) {
	_, err := Describe(reflect.TypeOf(withMap{}))
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = Describe(reflect.TypeOf([]map[int]int{}))
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = Describe(reflect.TypeOf((**int32)(nil)))
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)

	d, err := Describe(reflect.TypeOf(withExcludedMap{}))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Slots)
}

func TestDescribeConcurrent(t *testing.T) {
	type local struct {
		A []string
		B *point
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := Describe(reflect.TypeOf(local{}))
			assert.NoError(t, err)
			assert.Equal(t, 2, d.Slots)
		}()
	}
	wg.Wait()
}

func TestSettable(t *testing.T) {
	v := Allocate(reflect.TypeOf(dog{}))
	f := v.Field(2)
	assert.False(t, f.CanSet())
	Settable(f).SetString("hidden")
	assert.Equal(t, "hidden", v.Interface().(dog).cache)
}
