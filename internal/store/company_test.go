package store_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/store"
	"github.com/pabean-labs/bc20-explorer/internal/store/migrations"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
)

var _ = Describe("CompanyStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		seedCompanies(ctx, db)
		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	nibs := func(companies []models.Company) []string {
		out := make([]string, 0, len(companies))
		for _, c := range companies {
			out = append(out, c.NIB)
		}
		return out
	}

	Describe("List", func() {
		It("should sort by name by default", func() {
			companies, err := s.Companies().List(ctx, store.WithCompanySort("", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(nibs(companies)).To(Equal([]string{"0002", "0001", "0003"}))
		})

		It("should filter by name substring ignoring case", func() {
			companies, err := s.Companies().List(ctx, store.ByCompanyName("maju"), store.WithCompanySort("nib", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(nibs(companies)).To(Equal([]string{"0001", "0003"}))
		})

		It("should filter by legal status ignoring case", func() {
			count, err := s.Companies().Count(ctx, store.ByLegalStatus("PT"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		It("should filter by NPWP prefix", func() {
			companies, err := s.Companies().List(ctx, store.ByNPWPPrefix("02."))
			Expect(err).NotTo(HaveOccurred())
			Expect(nibs(companies)).To(Equal([]string{"0002"}))
		})

		It("should filter by project business line", func() {
			companies, err := s.Companies().List(ctx, store.ByKBLI("10110"))
			Expect(err).NotTo(HaveOccurred())
			Expect(nibs(companies)).To(Equal([]string{"0003"}))
			Expect(companies[0].IssuedAt).To(BeNil())
		})

		It("should paginate", func() {
			companies, err := s.Companies().List(ctx, store.WithCompanySort("nib", true), store.WithLimit(1), store.WithOffset(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(nibs(companies)).To(Equal([]string{"0002"}))
		})
	})

	Describe("Get", func() {
		It("should load the child records", func() {
			c, err := s.Companies().Get(ctx, "0001")
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Name).To(Equal("PT MAJU JAYA"))
			Expect(c.IssuedAt).NotTo(BeNil())
			Expect(c.Shareholders).To(HaveLen(2))
			Expect(c.Shareholders[0].Name).To(Equal("BUDI"))
			Expect(c.ResponsiblePersons).To(ConsistOf(models.ResponsiblePerson{Name: "BUDI", Position: "DIREKTUR"}))
			Expect(c.Projects).To(HaveLen(1))
			Expect(c.Projects[0].Investment).To(Equal(1000000.0))
		})

		It("should return not found for unknown NIBs", func() {
			_, err := s.Companies().Get(ctx, "9999")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})
})
