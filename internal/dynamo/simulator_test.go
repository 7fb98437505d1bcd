package dynamo_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/metrics"
	"github.com/san-kum/oscsim/internal/physics"
)

type countingObserver struct {
	steps []int
}

func (c *countingObserver) OnStep(step int, x dynamo.State, s dynamo.Sample) {
	c.steps = append(c.steps, step)
}

var _ = Describe("Simulator", func() {
	var (
		osc *physics.DampedOscillator
		sim *dynamo.Simulator
		x0  dynamo.State
		ctx context.Context
	)

	BeforeEach(func() {
		osc = physics.NewDampedOscillator(1, 1, 0)
		sim = dynamo.New(osc, integrators.NewSymplecticEuler())
		x0 = dynamo.State{Position: 1}
		ctx = context.Background()
	})

	Describe("Run", func() {
		It("records one sample per step after the step", func() {
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 1, Dt: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Len()).To(Equal(1))

			s := result.At(0)
			Expect(s.Time).To(BeNumerically("~", 0.1, 1e-15))
			Expect(s.Kinetic).To(BeNumerically("~", 0.005, 1e-12))
			Expect(s.Potential).To(BeNumerically("~", 0.49005, 1e-12))
			Expect(s.Total).To(BeNumerically("~", 0.49505, 1e-12))
		})

		It("keeps the four sequences aligned", func() {
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 321, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Times).To(HaveLen(321))
			Expect(result.Kinetic).To(HaveLen(321))
			Expect(result.Potential).To(HaveLen(321))
			Expect(result.Total).To(HaveLen(321))
			Expect(result.StepsTaken).To(Equal(321))
		})

		It("reports the final state", func() {
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 100, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final.Time).To(BeNumerically("~", 1.0, 1e-9))
			Expect(osc.Energy(result.Final)).To(BeNumerically("~", result.Total[99], 1e-15))
		})

		It("does not modify the initial state", func() {
			_, err := sim.Run(ctx, x0, dynamo.Config{Steps: 10, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(x0).To(Equal(dynamo.State{Position: 1}))
		})

		It("notifies observers in step order", func() {
			obs := &countingObserver{}
			sim.AddObserver(obs)
			_, err := sim.Run(ctx, x0, dynamo.Config{Steps: 5, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.steps).To(Equal([]int{0, 1, 2, 3, 4}))
		})

		It("resets metrics between runs", func() {
			sim.AddMetric(metrics.NewPeakKinetic())
			first, err := sim.Run(ctx, dynamo.State{Velocity: 3}, dynamo.Config{Steps: 10, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			second, err := sim.Run(ctx, dynamo.State{Velocity: 1}, dynamo.Config{Steps: 10, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Metrics["peak_kinetic"]).To(BeNumerically("<", first.Metrics["peak_kinetic"]))
		})

		It("stops on cancellation and returns the partial series", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			result, err := sim.Run(cctx, x0, dynamo.Config{Steps: 10, Dt: 0.01})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result).NotTo(BeNil())
			Expect(result.Len()).To(BeZero())
		})

		It("accepts step counts too large to preallocate", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			result, err := sim.Run(cctx, x0, dynamo.Config{Steps: 1 << 62, Dt: 0.01})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.Len()).To(BeZero())
		})

		It("grows the series past the initial allocation", func() {
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 70000, Dt: 0.001})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Len()).To(Equal(70000))
			Expect(result.Total).To(HaveLen(70000))
		})
	})

	Describe("configuration", func() {
		DescribeTable("rejects invalid step control",
			func(cfg dynamo.Config) {
				_, err := sim.Run(ctx, x0, cfg)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("zero dt", dynamo.Config{Steps: 10, Dt: 0}),
			Entry("negative dt", dynamo.Config{Steps: 10, Dt: -0.01}),
			Entry("zero steps", dynamo.Config{Steps: 0, Dt: 0.01}),
		)

		It("enforces the step bound", func() {
			_, err := sim.Run(ctx, x0, dynamo.Config{Steps: 11, Dt: 0.01, MaxSteps: 10})
			Expect(err).To(MatchError(dynamo.ErrStepLimit))

			_, err = sim.Run(ctx, x0, dynamo.Config{Steps: 10, Dt: 0.01, MaxSteps: 10})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("with zero mass", func() {
		BeforeEach(func() {
			osc.Mass = 0
		})

		It("propagates non-finite values by default", func() {
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 20, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Len()).To(Equal(20))
			Expect(math.IsNaN(result.Total[19])).To(BeTrue())
		})

		It("rejects the parameters in strict mode", func() {
			_, err := sim.Run(ctx, x0, dynamo.Config{Steps: 20, Dt: 0.01, Strict: true})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("stops at the first non-finite sample when asked", func() {
			_, err := sim.Run(ctx, x0, dynamo.Config{Steps: 20, Dt: 0.01, RejectNonFinite: true})
			Expect(err).To(MatchError(dynamo.ErrNonFinite))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
		})
	})

	Context("with damping", func() {
		It("loses energy over the run", func() {
			osc.Damping = 0.5
			result, err := sim.Run(ctx, x0, dynamo.Config{Steps: 1000, Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total[999]).To(BeNumerically("<", result.Total[0]))
		})
	})
})

var _ = Describe("Ensemble", func() {
	newIntegrator := func() dynamo.Integrator { return integrators.NewSymplecticEuler() }

	It("returns results in job order", func() {
		dampings := []float64{0, 0.1, 0.3, 0.6}
		jobs := make([]dynamo.Job, len(dampings))
		for i, c := range dampings {
			jobs[i] = dynamo.Job{
				System:  physics.NewDampedOscillator(1, 1, c),
				X0:      dynamo.State{Position: 1},
				Config:  dynamo.Config{Steps: 500, Dt: 0.01},
				Metrics: metrics.Defaults,
			}
		}

		results, err := dynamo.NewEnsemble(newIntegrator, 2).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(dampings)))

		for i := 1; i < len(results); i++ {
			Expect(results[i].Metrics["energy_decay"]).To(BeNumerically("<", results[i-1].Metrics["energy_decay"]))
		}
	})

	It("matches a sequential run exactly", func() {
		cfg := dynamo.Config{Steps: 300, Dt: 0.01}
		osc := physics.NewDampedOscillator(2, 3, 0.1)
		x0 := dynamo.State{Position: 0.5, Velocity: -0.2}

		seq, err := dynamo.New(osc, newIntegrator()).Run(context.Background(), x0, cfg)
		Expect(err).NotTo(HaveOccurred())

		par, err := dynamo.NewEnsemble(newIntegrator, 0).Run(context.Background(), []dynamo.Job{{System: osc, X0: x0, Config: cfg}})
		Expect(err).NotTo(HaveOccurred())
		Expect(par[0].Series).To(Equal(seq.Series))
	})

	It("fails when any job fails", func() {
		jobs := []dynamo.Job{
			{System: physics.NewDampedOscillator(1, 1, 0), X0: dynamo.State{Position: 1}, Config: dynamo.Config{Steps: 10, Dt: 0.01}},
			{System: physics.NewDampedOscillator(0, 1, 0), X0: dynamo.State{Position: 1}, Config: dynamo.Config{Steps: 10, Dt: 0.01, Strict: true}},
		}
		_, err := dynamo.NewEnsemble(newIntegrator, 2).Run(context.Background(), jobs)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})
