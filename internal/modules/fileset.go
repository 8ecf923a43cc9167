package modules

// FileSet is the immutable set of discovered modules. Besides exact lookup
// it indexes ids by stem so "./a.js" can find "a.ts".
type FileSet struct {
	ids   map[ModuleID]struct{}
	stems map[string][]ModuleID
	order []ModuleID
}

// NewFileSet builds a FileSet from discovered ids; duplicates collapse.
func NewFileSet(ids []ModuleID) *FileSet {
	fs := &FileSet{
		ids:   make(map[ModuleID]struct{}, len(ids)),
		stems: make(map[string][]ModuleID, len(ids)),
	}
	for _, id := range ids {
		if _, ok := fs.ids[id]; ok {
			continue
		}
		fs.ids[id] = struct{}{}
		fs.order = append(fs.order, id)
		stem := id.Stem()
		fs.stems[stem] = append(fs.stems[stem], id)
	}
	sortModuleIDs(fs.order)
	for _, group := range fs.stems {
		sortModuleIDs(group)
	}
	return fs
}

// Has reports whether p names a discovered file
func (fs *FileSet) Has(p string) bool {
	_, ok := fs.ids[ModuleID(p)]
	return ok
}

// ByStem returns every discovered file whose path minus extension is stem
func (fs *FileSet) ByStem(stem string) []ModuleID {
	return fs.stems[stem]
}

// IDs returns all ids in sorted order
func (fs *FileSet) IDs() []ModuleID {
	return fs.order
}

// Len returns the number of discovered files
func (fs *FileSet) Len() int {
	return len(fs.order)
}
