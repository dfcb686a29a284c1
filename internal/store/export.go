package store

import (
	"sort"

	"github.com/ideas-net-studio/shared-memory/internal/model"
)

// Export returns every memory in the store in stable order (type, then
// id), for backup or inspection.
func (s *Service) Export() ([]*model.Memory, error) {
	all, err := s.entities.All()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Type != all[j].Type {
			return all[i].Type < all[j].Type
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}
