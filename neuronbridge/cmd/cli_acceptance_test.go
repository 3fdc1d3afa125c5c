package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

const testConfig = `
workers: 2
log: warn
network:
  grid: [2, 2, 1]
  chunk_size: 100
  populations:
    - cell_type: A
      per_chunk: 3
    - cell_type: B
      per_chunk: 2
  projections:
    - name: A_to_B
      pre: A
      post: B
      probability: 0.3
    - name: B_to_A
      pre: B
      post: A
      probability: 0.3
simulations:
  - name: sim
    duration: 3
    cell_models:
      - {name: A, cell_type: A}
      - {name: B, cell_type: B}
    connection_models:
      - {name: A_to_B}
      - {name: B_to_A, weight: 0.5}
    devices:
      - {name: clock, kind: clock}
      - {name: tx, kind: transmitters, cell_types: [A, B]}
`

func execute(args ...string) (string, error) {
	out := bytes.NewBuffer(nil)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

var _ = Describe("CLI", func() {
	var (
		dir        string
		configPath string
		db         string
	)

	BeforeEach(func() {
		logrus.SetOutput(GinkgoWriter)

		dir = GinkgoT().TempDir()
		configPath = filepath.Join(dir, "config.yaml")
		db = filepath.Join(dir, "network.sqlite")
		Expect(os.WriteFile(configPath, []byte(testConfig), 0o644)).To(Succeed())

		_, err := execute("--config", configPath, "--env", filepath.Join(dir, ".env"),
			"generate", "--db", db)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should refuse to overwrite a network", func() {
		_, err := execute("--config", configPath, "generate", "--db", db)
		Expect(err).To(HaveOccurred())
	})

	It("should run, record and report", func() {
		GinkgoT().Setenv("NEURONBRIDGE_DB", db)
		record := filepath.Join(dir, "run")

		_, err := execute("--config", configPath, "run", "--record", record)
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("--config", configPath, "report", record+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("A_to_B"))
		Expect(out).To(ContainSubstring("B_to_A"))
		Expect(out).To(ContainSubstring("sim"))
	})

	It("should print the transmission map of a rank", func() {
		GinkgoT().Setenv("NEURONBRIDGE_DB", db)

		out, err := execute("--config", configPath, "transmap", "sim", "--rank", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("range"))
		Expect(out).To(ContainSubstring("receive"))
	})

	It("should reject unknown simulations", func() {
		GinkgoT().Setenv("NEURONBRIDGE_DB", db)

		_, err := execute("--config", configPath, "run", "other")
		Expect(err).To(MatchError(ContainSubstring("not configured")))
	})
})
