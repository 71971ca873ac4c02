package task

import (
	"testing"

	"github.com/frahmantamala/task-tracker/internal/core/common/patch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTask(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Task Suite")
}

func ptr[T any](v T) *T { return &v }

var _ = Describe("Diff", func() {
	var base *Task

	BeforeEach(func() {
		base = &Task{
			ID:          1,
			Title:       "Ship",
			Description: ptr("first cut"),
			Status:      StatusNotStarted,
			Priority:    PriorityMedium,
			CreatedBy:   10,
			TeamID:      3,
		}
	})

	It("reports nothing for identical tasks", func() {
		after := *base
		Expect(Diff(base, &after)).To(BeEmpty())
	})

	It("reports each changed field once with string values", func() {
		after := *base
		after.Status = StatusCompleted
		after.AssignedTo = ptr(int64(7))
		after.Description = nil

		changes := Diff(base, &after)

		Expect(changes).To(HaveLen(3))
		Expect(changes[0]).To(Equal(Change{Field: "description", Old: ptr("first cut"), New: nil}))
		Expect(changes[1]).To(Equal(Change{Field: "status", Old: ptr(StatusNotStarted), New: ptr(StatusCompleted)}))
		Expect(changes[2].Field).To(Equal("assigned_to"))
		Expect(changes[2].Old).To(BeNil())
		Expect(*changes[2].New).To(Equal("7"))
	})

	It("compares pointer fields by value", func() {
		after := *base
		after.Description = ptr("first cut")
		Expect(Diff(base, &after)).To(BeEmpty())
	})
})

var _ = Describe("UpdateTaskDTO", func() {
	It("applies only the fields that are present", func() {
		base := &Task{Title: "Ship", Priority: PriorityLow, AssignedTo: ptr(int64(4)), DueDate: ptr("2024-05-01")}
		dto := UpdateTaskDTO{
			Priority:   patch.Value(PriorityHigh),
			AssignedTo: patch.Null[int64](),
		}

		next := dto.Apply(base)

		Expect(next.Title).To(Equal("Ship"))
		Expect(next.Priority).To(Equal(PriorityHigh))
		Expect(next.AssignedTo).To(BeNil())
		Expect(*next.DueDate).To(Equal("2024-05-01"))
		Expect(base.Priority).To(Equal(PriorityLow))
	})

	It("rejects a null title and unknown enum values", func() {
		Expect(UpdateTaskDTO{Title: patch.Null[string]()}.Validate()).NotTo(BeNil())
		Expect(UpdateTaskDTO{Status: patch.Value("Done")}.Validate()).NotTo(BeNil())
		Expect(UpdateTaskDTO{Priority: patch.Value("urgent")}.Validate()).NotTo(BeNil())
		Expect(UpdateTaskDTO{DueDate: patch.Value("01/05/2024")}.Validate()).NotTo(BeNil())
		Expect(UpdateTaskDTO{Status: patch.Value(StatusInProgress)}.Validate()).To(BeNil())
	})

	It("is empty when no field is present", func() {
		Expect(UpdateTaskDTO{}.IsEmpty()).To(BeTrue())
		Expect(UpdateTaskDTO{Description: patch.Null[string]()}.IsEmpty()).To(BeFalse())
	})
})

var _ = Describe("CanWrite", func() {
	It("admits creator and assignee only without a tasks grant", func() {
		t := &Task{CreatedBy: 1, AssignedTo: ptr(int64(2))}

		Expect(CanWrite(actorWith(1, 3), t)).To(BeTrue())
		Expect(CanWrite(actorWith(2, 3), t)).To(BeTrue())
		Expect(CanWrite(actorWith(5, 9), t)).To(BeFalse())
	})
})
