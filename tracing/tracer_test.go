package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/neuronbridge/hooking"
)

type testTimeTeller struct {
	currentTime float64
}

func (t *testTimeTeller) CurrentTime() float64 {
	return t.currentTime
}

type testDomain struct {
	*hooking.HookableBase
	name string
}

func (d *testDomain) Name() string {
	return d.name
}

type testTable struct {
	created map[string]any
	entries map[string][]any
}

func newTestTable() *testTable {
	return &testTable{
		created: make(map[string]any),
		entries: make(map[string][]any),
	}
}

func (t *testTable) CreateTable(tableName string, sampleEntry any) {
	t.created[tableName] = sampleEntry
}

func (t *testTable) InsertData(tableName string, entry any) {
	t.entries[tableName] = append(t.entries[tableName], entry)
}

var _ = Describe("Tracing", func() {
	var (
		timeTeller *testTimeTeller
		domain     *testDomain
	)

	BeforeEach(func() {
		timeTeller = &testTimeTeller{}
		domain = &testDomain{HookableBase: hooking.NewHookableBase(), name: "Adapter[0]"}
	})

	It("should not require fields when nobody listens", func() {
		Expect(func() { StartTask("", "", domain, "", "", nil) }).NotTo(Panic())
	})

	It("should reject incomplete tasks", func() {
		CollectTrace(domain, NewTotalTimeTracer(timeTeller, KindFilter("phase")))

		Expect(func() { StartTask("", "", domain, "phase", "x", nil) }).To(Panic())
		Expect(func() { StartTask("1", "", domain, "", "x", nil) }).To(Panic())
		Expect(func() { StartTask("1", "", domain, "phase", "", nil) }).To(Panic())
	})

	It("should sum the time of the filtered tasks", func() {
		tracer := NewTotalTimeTracer(timeTeller, KindFilter("phase"))
		CollectTrace(domain, tracer)

		StartTask("1", "", domain, "phase", "load_balance", nil)
		StartTask("2", "", domain, "prepare", "sim", nil)
		timeTeller.currentTime = 2
		StartTask("3", "", domain, "phase", "create_neurons", nil)
		EndTask("1", domain)
		timeTeller.currentTime = 5
		EndTask("3", domain)
		EndTask("2", domain)

		Expect(tracer.TotalTime()).To(BeNumerically("~", 5))
		Expect(tracer.Count()).To(Equal(2))
	})

	It("should write the completed tasks", func() {
		table := newTestTable()
		tracer := NewDBTracer(timeTeller, table)
		CollectTrace(domain, tracer)

		Expect(table.created).To(HaveKey(TaskTable))

		timeTeller.currentTime = 1
		StartTask("1", "0", domain, "phase", "create_devices", nil)
		StartTask("2", "0", domain, "phase", "never_ends", nil)
		timeTeller.currentTime = 3
		EndTask("1", domain)
		EndTask("unknown", domain)

		Expect(table.entries[TaskTable]).To(Equal([]any{TaskEntry{
			ID:        "1",
			ParentID:  "0",
			Kind:      "phase",
			What:      "create_devices",
			Location:  "Adapter[0]",
			StartTime: 1,
			EndTime:   3,
		}}))
		Expect(tracer.InFlight()).To(Equal(1))
	})

	It("should tell the wall time", func() {
		c := NewWallClock()
		Expect(c.CurrentTime()).To(BeNumerically(">=", 0))
	})
})
