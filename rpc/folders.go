package rpc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/moyoez/calibre-panel/types"
)

var (
	ErrNoSharedFolder      = errors.New("no shared folder selected")
	ErrUnknownSharedFolder = errors.New("shared folder does not exist")
)

// Folders resolves shared folder references to host paths.
type Folders struct {
	list  []types.SharedFolder
	byRef map[string]types.SharedFolder
}

func NewFolders(list []types.SharedFolder) *Folders {
	f := &Folders{
		list:  slices.Clone(list),
		byRef: make(map[string]types.SharedFolder, len(list)),
	}
	for _, sf := range list {
		f.byRef[sf.Ref] = sf
	}
	return f
}

// List returns the folders offered by the shared folder picker.
func (f *Folders) List() []types.SharedFolder {
	return slices.Clone(f.list)
}

// Resolve looks up ref. Blank and "none" references fail with ErrNoSharedFolder.
func (f *Folders) Resolve(ref string) (types.SharedFolder, error) {
	if !types.HasSharedFolder(ref) {
		return types.SharedFolder{}, ErrNoSharedFolder
	}
	sf, ok := f.byRef[ref]
	if !ok {
		return types.SharedFolder{}, fmt.Errorf("%w: %s", ErrUnknownSharedFolder, ref)
	}
	return sf, nil
}
