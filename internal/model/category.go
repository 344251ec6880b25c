package model

// Category identifies the input good an option consumes.
// Categories are interned per sector through a Catalog so that matching is an
// integer comparison instead of a name comparison.
type Category int

// AllCategories is the wildcard: every option matches it.
const AllCategories Category = -1

// AllCategoriesName is the configuration spelling of AllCategories.
const AllCategoriesName = "allInputs"

// Matches reports whether an option with category c takes part in a query for target.
func (c Category) Matches(target Category) bool {
	return target == AllCategories || c == target
}

// Catalog interns input good names.
type Catalog struct {
	names []string
	ids   map[string]Category
}

func NewCatalog() *Catalog {
	return &Catalog{ids: map[string]Category{}}
}

// Intern returns the category for name, registering it on first use.
func (c *Catalog) Intern(name string) Category {
	if name == AllCategoriesName {
		return AllCategories
	}
	if id, ok := c.ids[name]; ok {
		return id
	}
	id := Category(len(c.names))
	c.names = append(c.names, name)
	c.ids[name] = id
	return id
}

// Lookup returns the category for name without registering it.
func (c *Catalog) Lookup(name string) (Category, bool) {
	if name == AllCategoriesName {
		return AllCategories, true
	}
	id, ok := c.ids[name]
	return id, ok
}

// Name returns the good name of a category, or "" if unknown.
func (c *Catalog) Name(cat Category) string {
	if cat == AllCategories {
		return AllCategoriesName
	}
	if int(cat) < 0 || int(cat) >= len(c.names) {
		return ""
	}
	return c.names[cat]
}

// Names returns the registered good names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
