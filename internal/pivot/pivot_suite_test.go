package pivot_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/driver"
	"github.com/san-kum/pivotsim/internal/pivot"
	"github.com/san-kum/pivotsim/internal/telemetry"
	"github.com/san-kum/pivotsim/internal/units"
	"github.com/san-kum/pivotsim/internal/viz"
)

func TestPivot(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pivot Suite")
}

var _ = Describe("Pivot tick loop", func() {
	var (
		cfg    *config.Config
		dev    *driver.Sim
		table  *telemetry.Table
		scene  *viz.Scene
		height float64
		p      *pivot.Pivot
	)

	tick := func(n int) {
		for i := 0; i < n; i++ {
			Expect(p.Tick(cfg.Period)).To(Succeed())
		}
	}

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		dev = driver.NewSim()
		table = telemetry.NewTable(1000)
		scene = viz.NewScene()
		height = 0.5

		var err error
		p, err = pivot.New(cfg, pivot.Deps{
			Driver:    dev,
			Telemetry: table,
			Sink:      scene,
			Anchor:    func() float64 { return height },
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Context("in local closed loop", func() {
		BeforeEach(func() {
			p.SetAngle(90)
		})

		It("settles on the setpoint", func() {
			tick(500)
			Expect(units.RadiansToDegrees(p.Angle())).To(BeNumerically("~", 90, 0.5))
			v, ok := table.Get(pivot.KeyAngle)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeNumerically("~", 90, 0.5))
		})

		It("never commands more than the supply allows", func() {
			tick(100)
			for _, v := range table.History(pivot.KeyEffort) {
				Expect(math.Abs(v)).To(BeNumerically("<=", cfg.MaxVoltage))
			}
		})

		It("publishes what the driver measured", func() {
			tick(2)
			effort := table.History(pivot.KeyEffort)
			measured := table.History(pivot.KeyMotorOutput)
			Expect(measured).To(HaveLen(2))
			Expect(measured[1]).To(Equal(effort[0]))
		})

		It("draws the ligament on the elevator", func() {
			tick(1)
			l, ok := scene.Get(pivot.LigamentName)
			Expect(ok).To(BeTrue())
			Expect(l.Root.Y).To(BeNumerically("~", cfg.Viz.RootY+height, 1e-12))

			height = 1.2
			tick(1)
			l, _ = scene.Get(pivot.LigamentName)
			Expect(l.Root.Y).To(BeNumerically("~", cfg.Viz.RootY+1.2, 1e-12))
		})
	})

	Context("with a profiled move", func() {
		BeforeEach(func() {
			p.RequestProfiledMove(math.Pi / 2)
		})

		It("lets the driver own the voltage", func() {
			tick(5)
			Expect(p.Mode()).To(Equal(pivot.DriverProfiled))
			Expect(dev.Mode()).To(Equal(driver.ModeProfiled))
			Expect(dev.Goal()).To(Equal(math.Pi / 2))
		})

		It("reaches the target", func() {
			tick(250)
			Expect(p.Angle()).To(BeNumerically("~", math.Pi/2, 0.01))
		})

		It("hands control back on SetAngle", func() {
			tick(10)
			p.SetAngle(30)
			tick(1)
			Expect(dev.Mode()).To(Equal(driver.ModeVoltage))
			Expect(table.History(pivot.KeyMode)).To(HaveLen(11))
			v, _ := table.Get(pivot.KeyMode)
			Expect(v).To(Equal(float64(pivot.LocalClosedLoop)))
		})
	})

	Context("when the device drops off the bus", func() {
		It("keeps controlling and flags stale data", func() {
			p.SetAngle(45)
			tick(10)
			dev.SetConnected(false)
			tick(10)

			Expect(p.Stale()).To(BeTrue())
			v, _ := table.Get(pivot.KeyStaleData)
			Expect(v).To(Equal(1.0))
			Expect(p.Ticks()).To(BeEquivalentTo(20))

			dev.SetConnected(true)
			tick(1)
			Expect(p.Stale()).To(BeFalse())
		})
	})

	Context("when a tick faults", func() {
		It("rolls back and reports the fault", func() {
			p.SetAngle(60)
			tick(5)
			angle := p.Angle()

			p.SetAngle(math.Inf(1))
			err := p.Tick(cfg.Period)
			Expect(err).To(MatchError(pivot.ErrTickFault))
			Expect(p.Angle()).To(Equal(angle))
			Expect(p.Faults()).To(Equal(1))
		})
	})
})
