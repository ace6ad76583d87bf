package product

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tempDir string
		db      *BoltDB
		err     error
	)

	BeforeEach(func() {
		tempDir, err = os.MkdirTemp("", "shelfscan-test-*")
		Expect(err).NotTo(HaveOccurred())

		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
	})

	Describe("catalog", func() {
		It("should find an entry by exact code", func() {
			days := 5
			entry := &CatalogEntry{Code: "654321", Name: "Greek Yogurt", Category: "Dairy", ShelfLifeDays: &days}
			Expect(db.PutEntry(entry)).To(Succeed())

			found, err := db.Find("654321")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Greek Yogurt"))
			Expect(*found.ShelfLifeDays).To(Equal(5))
		})

		It("should preserve a null shelf life", func() {
			Expect(db.PutEntry(&CatalogEntry{Code: "111", Name: "Canned Beans"})).To(Succeed())

			found, err := db.Find("111")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ShelfLifeDays).To(BeNil())
		})

		It("returns a miss for an absent code", func() {
			_, err := db.Find("does-not-exist")
			Expect(err).To(MatchError(ErrCatalogMiss))
		})

		It("rejects entries without a code", func() {
			Expect(db.PutEntry(&CatalogEntry{Name: "No Code"})).NotTo(Succeed())
		})

		Describe("ImportCatalog", func() {
			It("should load entries from a JSON file", func() {
				path := filepath.Join(tempDir, "catalog.json")
				contents := `[
					{"code": "123", "name": "Organic Milk", "category": "Dairy", "shelf_life_days": 7},
					{"code": "456", "name": "Fresh Bread", "category": "Bakery", "shelf_life_days": 0},
					{"code": "789", "name": "Canned Beans", "shelf_life_days": null}
				]`
				Expect(os.WriteFile(path, []byte(contents), 0644)).To(Succeed())

				count, err := db.ImportCatalog(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(3))

				bread, err := db.Find("456")
				Expect(err).NotTo(HaveOccurred())
				Expect(*bread.ShelfLifeDays).To(Equal(0))

				beans, err := db.Find("789")
				Expect(err).NotTo(HaveOccurred())
				Expect(beans.ShelfLifeDays).To(BeNil())
			})

			It("returns an error for a missing file", func() {
				_, err := db.ImportCatalog(filepath.Join(tempDir, "nope.json"))
				Expect(err).To(HaveOccurred())
			})

			It("returns an error for malformed JSON", func() {
				path := filepath.Join(tempDir, "bad.json")
				Expect(os.WriteFile(path, []byte("{not json"), 0644)).To(Succeed())

				_, err := db.ImportCatalog(path)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("inventory", func() {
		newTestItem := func(id string, createdAt time.Time) *Item {
			return &Item{
				ID:          id,
				Barcode:     "123456",
				ProductName: "Organic Milk",
				Category:    "Dairy",
				ExpiryDate:  "2026-09-03",
				Confidence:  0.85,
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			}
		}

		It("should save and retrieve an item", func() {
			item := newTestItem("id-1", time.Now())
			Expect(db.SaveItem(item)).To(Succeed())

			found, err := db.GetItem("id-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ProductName).To(Equal("Organic Milk"))
			Expect(found.Confidence).To(Equal(0.85))
		})

		It("returns not found for an absent item", func() {
			_, err := db.GetItem("missing")
			Expect(err).To(MatchError(ErrItemNotFound))
		})

		It("should list items newest first", func() {
			base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
			Expect(db.SaveItem(newTestItem("older", base))).To(Succeed())
			Expect(db.SaveItem(newTestItem("newer", base.Add(time.Hour)))).To(Succeed())

			items, err := db.ListItems()
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].ID).To(Equal("newer"))
			Expect(items[1].ID).To(Equal("older"))
		})

		It("should search by product name and barcode substrings", func() {
			milk := newTestItem("milk", time.Now())
			yogurt := newTestItem("yogurt", time.Now())
			yogurt.ProductName = "Greek Yogurt"
			yogurt.Barcode = "654321"
			Expect(db.SaveItem(milk)).To(Succeed())
			Expect(db.SaveItem(yogurt)).To(Succeed())

			byName, err := db.SearchItems("yogurt")
			Expect(err).NotTo(HaveOccurred())
			Expect(byName).To(HaveLen(1))
			Expect(byName[0].ID).To(Equal("yogurt"))

			byCode, err := db.SearchItems("1234")
			Expect(err).NotTo(HaveOccurred())
			Expect(byCode).To(HaveLen(1))
			Expect(byCode[0].ID).To(Equal("milk"))
		})

		It("should delete an item", func() {
			Expect(db.SaveItem(newTestItem("id-1", time.Now()))).To(Succeed())
			Expect(db.DeleteItem("id-1")).To(Succeed())

			_, err := db.GetItem("id-1")
			Expect(err).To(MatchError(ErrItemNotFound))
		})

		It("returns not found when deleting an absent item", func() {
			Expect(db.DeleteItem("missing")).To(MatchError(ErrItemNotFound))
		})
	})
})
