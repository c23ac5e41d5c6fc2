package parse

import (
	"reflect"
	"testing"
)

func TestInstance_String(t *testing.T) {
	color := NewEnum("Color", map[int64]string{2: "BLUE"})
	point := Section("point", F("x", I8), F("y", I8))

	s := Stream("record",
		F("magic", Contents([]byte("RC"))),
		F("len", U8),
		F("body", Bytes(Ref("len"))),
		F("name", StringZ("ascii")),
		F("color", Enum(color, U8)),
		F("points", RepeatN(Struct(point), Lit(2))),
		F("flags", RepeatN(Bits(Lit(4)), Lit(2))),
	)

	data := []byte("RC\x03a\"c" + "hi\x00" + "\x02" + "\x01\xff\x02\x03" + "\x21")
	inst := mustParse(t, s, data)

	want := `record(magic="RC", len=3, body="a\"c", name="hi", color=Color.BLUE, ` +
		`points=[point(x=1, y=-1), point(x=2, y=3)], flags=[1, 2])`
	if got := inst.String(); got != want {
		t.Errorf("String =\n  %s\nwant\n  %s", got, want)
	}
}

func TestInstance_Introspection(t *testing.T) {
	s := Stream("pair", F("a", U8), F("b", U16), F("pad", Skip(Lit(1))))
	inst := mustParse(t, s, []byte{1, 2, 0, 0})

	if inst.Name() != "pair" {
		t.Errorf("Name = %q", inst.Name())
	}
	if inst.Len() != 2 {
		t.Errorf("Len = %d, want 2", inst.Len())
	}
	if got := inst.Fields(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Fields = %v", got)
	}
	if !inst.Has("a") || inst.Has("pad") || inst.Has("missing") {
		t.Error("Has reports wrong fields")
	}
	if inst.Get("missing") != nil {
		t.Error("Get(missing) != nil")
	}
	if n, ok := inst.Int("a"); !ok || n != 1 {
		t.Errorf("Int(a) = %d, %v", n, ok)
	}

	var names []string
	for name := range inst.All() {
		names = append(names, name)
		break
	}
	if !reflect.DeepEqual(names, []string{"a"}) {
		t.Errorf("All stopped early = %v", names)
	}
}
