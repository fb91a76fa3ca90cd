// Package repository provides a generic unit-of-work store for entities
// keyed by a comparable ID.
//
// Writes are staged and applied together by Save:
//
//	repo := repository.New[string, Entry]()
//	repo.Add(Entry{ID: "a"})
//	repo.Add(Entry{ID: "b"})
//	_ = repo.Save()
//
//	page, _ := repo.GetPage(1, 10) // pages are 1-based
//
// Repositories created with Open also write a YAML snapshot through a
// storage.FileService on every successful Save.
package repository
