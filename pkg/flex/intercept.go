package flex

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

// Read returns the value of name on owner. Native columns are read from
// the struct; flex attributes come from the pending writes or the stored
// rows and are nil when absent. Any other name is an unknown attribute.
func (c *Config) Read(owner Owner, name string) (interface{}, error) {
	ctx := context.Background()

	if f := c.column(name); f != nil {
		return c.readColumn(ctx, owner, f), nil
	}
	if !c.IsFlexAttribute(owner, name) {
		return nil, &UnknownAttributeError{Model: c.Model, Name: name}
	}

	value, ok, err := c.lookup(ctx, owner, name)
	if err != nil || !ok {
		return nil, err
	}
	return value, nil
}

// Write assigns value to name on owner. Native columns are set on the
// struct; flex values are converted to strings and buffered until the
// owner is saved. Any other name is an unknown attribute.
func (c *Config) Write(owner Owner, name string, value interface{}) error {
	ctx := context.Background()

	if f := c.column(name); f != nil {
		return c.writeColumn(ctx, owner, f, value)
	}
	if !c.IsFlexAttribute(owner, name) {
		return &UnknownAttributeError{Model: c.Model, Name: name}
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return errors.Wrapf(err, "cannot store %s.%s", c.Model, name)
	}

	a := owner.FlexAttributes()
	a.pending = append(a.pending, Pair{Name: name, Value: s})
	return nil
}

// Call resolves a dynamic method invocation on owner. Resolution order:
// an exported method of the model, a native column accessor ("name") or
// mutator ("name="), then a flex attribute accessor or mutator. Anything
// else fails with a NoMethodError naming the original method.
func (c *Config) Call(owner Owner, method string, args ...interface{}) (interface{}, error) {
	if m := reflect.ValueOf(owner).MethodByName(method); m.IsValid() {
		return invoke(m, method, args)
	}

	name := strings.TrimSuffix(method, "=")
	assign := name != method

	if !c.IsColumn(name) && !c.IsFlexAttribute(owner, name) {
		return nil, &NoMethodError{Model: c.Model, Method: method}
	}

	if assign {
		if len(args) != 1 {
			return nil, errors.Newf("wrong number of arguments for %s (given %d, expected 1)", method, len(args))
		}
		if err := c.Write(owner, name, args[0]); err != nil {
			return nil, err
		}
		return args[0], nil
	}

	if len(args) != 0 {
		return nil, errors.Newf("wrong number of arguments for %s (given %d, expected 0)", method, len(args))
	}
	return c.Read(owner, name)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func invoke(m reflect.Value, method string, args []interface{}) (interface{}, error) {
	mt := m.Type()
	if !mt.IsVariadic() && len(args) != mt.NumIn() {
		return nil, errors.Newf("wrong number of arguments for %s (given %d, expected %d)", method, len(args), mt.NumIn())
	}
	if mt.IsVariadic() && len(args) < mt.NumIn()-1 {
		return nil, errors.Newf("wrong number of arguments for %s (given %d, expected %d+)", method, len(args), mt.NumIn()-1)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := mt.In(min(i, mt.NumIn()-1))
		if mt.IsVariadic() && i >= mt.NumIn()-1 {
			want = want.Elem()
		}

		v := reflect.ValueOf(arg)
		switch {
		case !v.IsValid():
			v = reflect.Zero(want)
		case v.Type().AssignableTo(want):
		case v.Type().ConvertibleTo(want):
			v = v.Convert(want)
		default:
			return nil, errors.Newf("argument %d of %s: cannot use %T as %s", i, method, arg, want)
		}
		in[i] = v
	}

	out := m.Call(in)
	if len(out) == 0 {
		return nil, nil
	}

	last := out[len(out)-1]
	if last.Type() == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return out[0].Interface(), err
	}
	return out[0].Interface(), nil
}

// Read reads name on owner using the default registry.
func Read(owner Owner, name string) (interface{}, error) {
	cfg, err := configOf(owner)
	if err != nil {
		return nil, err
	}
	return cfg.Read(owner, name)
}

// Write writes name on owner using the default registry.
func Write(owner Owner, name string, value interface{}) error {
	cfg, err := configOf(owner)
	if err != nil {
		return err
	}
	return cfg.Write(owner, name, value)
}

// Call dispatches method on owner using the default registry.
func Call(owner Owner, method string, args ...interface{}) (interface{}, error) {
	cfg, err := configOf(owner)
	if err != nil {
		return nil, err
	}
	return cfg.Call(owner, method, args...)
}
