package organization_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/frahmantamala/hr-attendance/internal/organization"
	organizationPostgres "github.com/frahmantamala/hr-attendance/internal/organization/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestOrganization(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Organization Module Suite")
}

var _ = Describe("Organization Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    organization.Repository
		service *organization.Service
		handler *organization.Handler
		router  *chi.Mux
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&organization.Department{}, &organization.Team{})
		Expect(err).NotTo(HaveOccurred())

		repo = organizationPostgres.NewOrganizationRepository(db)
		service = organization.NewService(repo, slogger)
		handler = organization.NewHandler(service)

		router = chi.NewRouter()
		router.Get("/departments", handler.ListDepartments)
		router.Post("/departments", handler.CreateDepartment)
		router.Get("/departments/{id}", handler.GetDepartment)
		router.Patch("/departments/{id}", handler.UpdateDepartment)
		router.Delete("/departments/{id}", handler.DeleteDepartment)
		router.Post("/teams", handler.CreateTeam)
		router.Get("/teams", handler.ListTeams)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	createDepartment := func(name string) organization.Department {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{"name":"`+name+`"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created organization.Department
		Expect(json.NewDecoder(w.Body).Decode(&created)).NotTo(HaveOccurred())
		return created
	}

	It("should create and list departments", func() {
		createDepartment("Engineering")
		createDepartment("Sales")

		req := httptest.NewRequest(http.MethodGet, "/departments", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response struct {
			Departments []organization.Department `json:"departments"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&response)).NotTo(HaveOccurred())
		Expect(response.Departments).To(HaveLen(2))

		names := make([]string, len(response.Departments))
		for i, d := range response.Departments {
			names[i] = d.Name
		}
		Expect(names).To(ConsistOf("Engineering", "Sales"))
	})

	It("should reject a department without a name", func() {
		req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should fetch a department by ID", func() {
		created := createDepartment("Engineering")

		req := httptest.NewRequest(http.MethodGet, "/departments/"+itoa(created.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))

		var fetched organization.Department
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).NotTo(HaveOccurred())
		Expect(fetched.Name).To(Equal("Engineering"))
	})

	It("should return 404 for a missing department", func() {
		req := httptest.NewRequest(http.MethodGet, "/departments/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should update a department name and clear its manager", func() {
		created := createDepartment("Engineering")

		managerID := int64(7)
		created.ManagerID = &managerID
		Expect(repo.UpdateDepartment(&created)).NotTo(HaveOccurred())

		body := `{"name":"Platform Engineering","clear_manager":true}`
		req := httptest.NewRequest(http.MethodPatch, "/departments/"+itoa(created.ID), strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))

		var updated organization.Department
		Expect(json.NewDecoder(w.Body).Decode(&updated)).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("Platform Engineering"))
		Expect(updated.ManagerID).To(BeNil())
	})

	It("should delete a department", func() {
		created := createDepartment("Engineering")

		req := httptest.NewRequest(http.MethodDelete, "/departments/"+itoa(created.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))

		req = httptest.NewRequest(http.MethodGet, "/departments/"+itoa(created.ID), nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should create a team attached to a department", func() {
		created := createDepartment("Engineering")

		body := `{"name":"Platform","department_id":` + itoa(created.ID) + `}`
		req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))

		var team organization.Team
		Expect(json.NewDecoder(w.Body).Decode(&team)).NotTo(HaveOccurred())
		Expect(team.Name).To(Equal("Platform"))
		Expect(team.DepartmentID).NotTo(BeNil())
		Expect(*team.DepartmentID).To(Equal(created.ID))
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
