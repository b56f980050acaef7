package mapping

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// ByName returns a translation that copies every exported source field onto
// the destination field with the same name. Fields listed in ignore, and
// fields missing on either side, are left untouched. Values whose types are
// not assignable are converted with mapstructure's weak decoding (for
// example "42" to 42); a value that cannot be converted fails the mapping.
// Slices, maps and pointers are copied shallowly.
func ByName[S, D any](ignore ...string) Func[S, D] {
	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}
	return func(src S, dst D) error {
		sv := reflect.Indirect(reflect.ValueOf(src))
		dv := reflect.ValueOf(dst)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return errors.New("destination must be a non-nil pointer")
		}
		dv = dv.Elem()
		if sv.Kind() != reflect.Struct || dv.Kind() != reflect.Struct {
			return fmt.Errorf("by-name mapping needs structs, got %s and %s", sv.Kind(), dv.Kind())
		}

		st := sv.Type()
		for i := 0; i < st.NumField(); i++ {
			sf := st.Field(i)
			if !sf.IsExported() || sf.Anonymous || skip[sf.Name] {
				continue
			}
			df := dv.FieldByName(sf.Name)
			if !df.IsValid() || !df.CanSet() {
				continue
			}
			if err := assign(df, sv.Field(i)); err != nil {
				return fmt.Errorf("field %s: %w", sf.Name, err)
			}
		}
		return nil
	}
}

func assign(dst, src reflect.Value) error {
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	target := reflect.New(dst.Type())
	if err := mapstructure.WeakDecode(src.Interface(), target.Interface()); err != nil {
		return fmt.Errorf("convert %s to %s: %w", src.Type(), dst.Type(), err)
	}
	dst.Set(target.Elem())
	return nil
}
