// Package evolution evolves populations of simulated walking creatures with three
// interchangeable optimisation methods: a genetic algorithm, hill climbing and
// simulated annealing.
//
// A creature is a body of point-mass nodes joined by muscles that extend and contract
// once per heartbeat. Its fitness comes from a physics trial supplied by the caller
// through the Evaluator interface; package physics provides a reference one.
//
// Every method owns a Population, the ordered history of its generations, and advances
// it one generation per GenerationSingle call. All randomness comes from the *rand.Rand
// passed in, so a fixed seed and call order reproduce a run exactly.
//
// Basic usage:
//
//	config, err := evolution.LoadConfig("configs/walkers.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	rng := evolution.NewRand(config.Run.Seed)
//	pop, err := evolution.NewPopulation(config.Run.GenerationSize, &config.Genome, rng)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	sim := physics.NewSimulator(config.Physics)
//	ga := evolution.NewGeneticAlgorithm(pop.Clone(), config, sim)
//	hc := evolution.NewHillClimbing(pop, config, sim)
//	for i := 0; i < config.Run.Generations; i++ {
//		if err := ga.GenerationSingle(rng); err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		if err := hc.GenerationSingle(rng); err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//	}
//
// Session wraps this loop for every method enabled in a Config.
package evolution
