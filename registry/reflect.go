package registry

// AttributeDescriptor is the read-only view spec.md §4.7's reflection
// retrieval functions return for one `#[...]` declaration. The core never
// instantiates the attribute's class; it only reports the name and argument
// list the declaration carried.
type AttributeDescriptor struct {
	Name      string
	Arguments []AttributeArg
}

func describeAttributes(attrs []*Attribute) []AttributeDescriptor {
	out := make([]AttributeDescriptor, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, AttributeDescriptor{Name: a.Name, Arguments: a.Arguments})
	}
	return out
}

// ClassAttributes returns a class declaration's attribute descriptors.
func (r *Registry) ClassAttributes(className string) ([]AttributeDescriptor, bool) {
	class, ok := r.GetClass(className)
	if !ok {
		return nil, false
	}
	return describeAttributes(class.Attributes), true
}

// FunctionAttributes returns a free function's attribute descriptors.
func (r *Registry) FunctionAttributes(name string) ([]AttributeDescriptor, bool) {
	fn, ok := r.GetFunction(name)
	if !ok {
		return nil, false
	}
	return describeAttributes(fn.Attributes), true
}

// MethodAttributes returns one method's attribute descriptors.
func (r *Registry) MethodAttributes(className, methodName string) ([]AttributeDescriptor, bool) {
	class, ok := r.GetClass(className)
	if !ok {
		return nil, false
	}
	fn, ok := class.Methods[methodName]
	if !ok {
		return nil, false
	}
	return describeAttributes(fn.Attributes), true
}

// PropertyAttributes returns one class property's attribute descriptors.
func (r *Registry) PropertyAttributes(className, propName string) ([]AttributeDescriptor, bool) {
	class, ok := r.GetClass(className)
	if !ok {
		return nil, false
	}
	prop, ok := class.Properties[propName]
	if !ok {
		return nil, false
	}
	return describeAttributes(prop.Attributes), true
}

// ParameterAttributes returns one parameter's attribute descriptors, by
// position. className empty selects a free function named by fnName;
// otherwise fnName names one of className's methods.
func (r *Registry) ParameterAttributes(className, fnName string, paramIndex int) ([]AttributeDescriptor, bool) {
	var fn *Function
	if className == "" {
		fn, _ = r.GetFunction(fnName)
	} else {
		class, ok := r.GetClass(className)
		if !ok {
			return nil, false
		}
		fn = class.Methods[fnName]
	}
	if fn == nil || paramIndex < 0 || paramIndex >= len(fn.Parameters) {
		return nil, false
	}
	return describeAttributes(fn.Parameters[paramIndex].Attributes), true
}
