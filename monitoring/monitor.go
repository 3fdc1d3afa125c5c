// Package monitoring serves the state of the running adapters over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"

	"github.com/sarchlab/neuronbridge/adapter"
	"github.com/sarchlab/neuronbridge/hooking"
	"github.com/sarchlab/neuronbridge/simulation"
)

// Monitor follows adapters through their hooks and lets external tools
// inspect the prepared simulations and the progress of the runs.
type Monitor struct {
	portNumber int
	logger     logrus.FieldLogger

	lock         sync.Mutex
	adapters     []*adapter.NeuronAdapter
	simulations  []*trackedSimulation
	progressBars []*ProgressBar
	runBars      map[runKey]*ProgressBar
}

type trackedSimulation struct {
	adapter *adapter.NeuronAdapter
	rank    int
	data    *adapter.SimulationData
}

// finished reports whether the simulation was released by its adapter.
func (t *trackedSimulation) finished() bool {
	switch t.data.State() {
	case adapter.Completed, adapter.Failed:
		return true
	default:
		return false
	}
}

// minPortNumber is the lowest port the server listens on. Lower requests get a
// random port.
const minPortNumber = 1000

type runKey struct {
	adapter *adapter.NeuronAdapter
	names   string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		logger:  logrus.StandardLogger(),
		runBars: make(map[runKey]*ProgressBar),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < minPortNumber {
		m.logger.Warnf("Port number %d is not allowed for the monitoring "+
			"server. Using a random port instead.", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger the server reports to.
func (m *Monitor) WithLogger(l logrus.FieldLogger) *Monitor {
	m.logger = l
	return m
}

// RegisterAdapter starts following an adapter.
func (m *Monitor) RegisterAdapter(a *adapter.NeuronAdapter) {
	m.lock.Lock()
	m.adapters = append(m.adapters, a)
	m.lock.Unlock()

	a.AcceptHook(m)
}

// Func records the prepared simulations and moves the progress bars.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Domain.(*adapter.NeuronAdapter)
	if !ok {
		return
	}

	switch ctx.Pos {
	case adapter.HookPosPrepared:
		m.trackSimulation(a, ctx.Item.(*adapter.SimulationData))
	case adapter.HookPosProgress:
		m.updateProgress(a, ctx.Item.([]*simulation.Simulation),
			ctx.Detail.(adapter.Progress))
	}
}

func (m *Monitor) trackSimulation(a *adapter.NeuronAdapter, d *adapter.SimulationData) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.pruneSimulations(func(t *trackedSimulation) bool { return t.finished() })
	m.simulations = append(m.simulations, &trackedSimulation{
		adapter: a,
		rank:    a.Engine().Rank(),
		data:    d,
	})
}

// pruneSimulations forgets the tracked simulations drop returns true for. The
// lock must be held.
func (m *Monitor) pruneSimulations(drop func(t *trackedSimulation) bool) {
	m.simulations = slices.DeleteFunc(m.simulations, drop)
}

// forgetRun forgets the simulations a run on a has just finished.
func (m *Monitor) forgetRun(a *adapter.NeuronAdapter, sims []*simulation.Simulation) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.pruneSimulations(func(t *trackedSimulation) bool {
		return t.adapter == a && slices.Contains(sims, t.data.Simulation())
	})
}

func (m *Monitor) updateProgress(
	a *adapter.NeuronAdapter,
	sims []*simulation.Simulation,
	p adapter.Progress,
) {
	names := make([]string, 0, len(sims))
	for _, sim := range sims {
		names = append(names, sim.Name())
	}

	key := runKey{adapter: a, names: strings.Join(names, ",")}

	m.lock.Lock()
	bar, found := m.runBars[key]
	m.lock.Unlock()

	if !found {
		name := fmt.Sprintf("rank %d: %s", a.Engine().Rank(), key.names)
		bar = m.CreateProgressBar(name, uint64(math.Ceil(p.Duration)))

		m.lock.Lock()
		m.runBars[key] = bar
		m.lock.Unlock()
	}

	bar.SetFinished(uint64(math.Floor(p.Time)))

	if p.Done {
		m.CompleteProgressBar(bar)

		m.lock.Lock()
		delete(m.runBars, key)
		m.lock.Unlock()

		m.forgetRun(a, sims)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

	m.lock.Lock()
	defer m.lock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list of bars shown.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.lock.Lock()
	defer m.lock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/simulations", m.listSimulations)
	r.HandleFunc("/api/simulation/{rank}/{name}", m.simulationDetails)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddress())
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.logger.Infof("Monitoring simulation with %s", url)

	r := m.Router()
	go func() {
		err := http.Serve(listener, r)
		if err != nil {
			m.logger.WithError(err).Error("Monitoring server stopped")
		}
	}()

	return url, nil
}

// listenAddress returns the address of the configured port, or of a random
// one.
func (m *Monitor) listenAddress() string {
	if m.portNumber < minPortNumber {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

type nowRsp struct {
	Rank int     `json:"rank"`
	Now  float64 `json:"now"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	rsp := make([]nowRsp, 0, len(m.adapters))
	for _, a := range m.adapters {
		rsp = append(rsp, nowRsp{Rank: a.Engine().Rank(), Now: a.Engine().Time()})
	}
	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.lock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: memory.RSS})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, prof)
}

type simulationRsp struct {
	Rank         int     `json:"rank"`
	Name         string  `json:"name"`
	State        string  `json:"state"`
	Duration     float64 `json:"duration"`
	Chunks       int     `json:"chunks"`
	FirstGID     int64   `json:"first_gid"`
	LastGID      int64   `json:"last_gid"`
	Transmitters int     `json:"transmitters"`
	Connections  int     `json:"connections"`
}

func (m *Monitor) listSimulations(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	m.pruneSimulations(func(t *trackedSimulation) bool { return t.finished() })
	tracked := slices.Clone(m.simulations)
	m.lock.Unlock()

	rsp := make([]simulationRsp, 0, len(tracked))
	for _, t := range tracked {
		sim := t.data.Simulation()
		r := t.data.Range()

		rsp = append(rsp, simulationRsp{
			Rank:         t.rank,
			Name:         sim.Name(),
			State:        t.data.State().String(),
			Duration:     sim.Duration(),
			Chunks:       len(t.data.Chunks()),
			FirstGID:     int64(r.First),
			LastGID:      int64(r.Last),
			Transmitters: len(t.data.Transmitters()),
			Connections:  t.data.NumConnections(),
		})
	}

	writeJSON(w, rsp)
}

// simulationDetails serializes the prepared state of a simulation. The field
// query parameter selects a nested field, as in "populations.A".
func (m *Monitor) simulationDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rank, err := strconv.Atoi(vars["rank"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data := m.findSimulation(rank, vars["name"])
	if data == nil {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("simulation %s not found on rank %d", vars["name"], rank))
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(data)
	serializer.SetMaxDepth(1)

	if field := r.URL.Query().Get("field"); field != "" {
		err = serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	err = serializer.Serialize(w)
	if err != nil {
		m.logger.WithError(err).Warn("Serializing simulation failed")
	}
}

func (m *Monitor) findSimulation(rank int, name string) *adapter.SimulationData {
	m.lock.Lock()
	defer m.lock.Unlock()

	var found *adapter.SimulationData
	for _, t := range m.simulations {
		if t.rank == rank && t.data.Simulation().Name() == name && !t.finished() {
			found = t.data
		}
	}

	return found
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logrus.WithError(err).Warn("Writing monitoring response failed")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	fmt.Fprintf(w, "Error: %s", err)
}
