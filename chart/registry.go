package chart

// Variant builds options for one chart type.
type Variant interface {
	Type() ChartType
	Family() Family
	// ResolveMapping derives a default mapping for the variant's family.
	ResolveMapping(ds Dataset) Mapping
	// BuildOption builds an option; it never fails on data irregularities.
	BuildOption(ds Dataset, m Mapping, style StyleConfig) ChartOption
}

// Cartesian is the line/bar variant.
type Cartesian struct {
	Kind ChartType
}

func (c Cartesian) Type() ChartType { return c.Kind }
func (Cartesian) Family() Family    { return FamilyCartesian }

func (Cartesian) ResolveMapping(ds Dataset) Mapping {
	return Resolve(ds, FamilyCartesian)
}

func (c Cartesian) BuildOption(ds Dataset, m Mapping, style StyleConfig) ChartOption {
	return BuildCartesian(c.Kind, ds, m.Cartesian(), style)
}

// Proportional is the pie/donut variant. A donut is a pie whose inner radius
// defaults to a positive value.
type Proportional struct {
	Kind               ChartType
	InnerRadiusDefault int
}

func (p Proportional) Type() ChartType { return p.Kind }
func (Proportional) Family() Family    { return FamilyProportional }

func (Proportional) ResolveMapping(ds Dataset) Mapping {
	return Resolve(ds, FamilyProportional)
}

func (p Proportional) BuildOption(ds Dataset, m Mapping, style StyleConfig) ChartOption {
	return BuildProportional(p.Kind, p.InnerRadiusDefault, ds, m.Proportional(), style)
}

// DonutInnerRadius is the default inner radius percentage of a donut.
const DonutInnerRadius = 40

// Registry maps chart types to their variants.
type Registry struct {
	variants map[ChartType]Variant
	order    []ChartType
}

// NewRegistry registers variants in order; a later variant replaces an
// earlier one with the same type.
func NewRegistry(variants ...Variant) *Registry {
	r := &Registry{variants: make(map[ChartType]Variant, len(variants))}
	for _, v := range variants {
		if _, exists := r.variants[v.Type()]; !exists {
			r.order = append(r.order, v.Type())
		}
		r.variants[v.Type()] = v
	}
	return r
}

// DefaultRegistry returns the line, bar, pie and donut variants.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Cartesian{Kind: Line},
		Cartesian{Kind: Bar},
		Proportional{Kind: Pie},
		Proportional{Kind: Donut, InnerRadiusDefault: DonutInnerRadius},
	)
}

var defaultRegistry = DefaultRegistry()

// Lookup returns the variant for t or ErrUnknownChartType.
func (r *Registry) Lookup(t ChartType) (Variant, error) {
	v, ok := r.variants[t]
	if !ok {
		return nil, unknownChartType(t, r.order)
	}
	return v, nil
}

// Types lists registered chart types in registration order.
func (r *Registry) Types() []ChartType {
	return append([]ChartType{}, r.order...)
}

// Build looks up the variant for t and builds its option.
func (r *Registry) Build(t ChartType, ds Dataset, m Mapping, style StyleConfig) (ChartOption, error) {
	v, err := r.Lookup(t)
	if err != nil {
		return ChartOption{}, err
	}
	return v.BuildOption(ds, m, style), nil
}
