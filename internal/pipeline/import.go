package pipeline

// ImportStrategies validates the strategy file at src and copies it into the
// store. Nothing is written when any entry is invalid.
func ImportStrategies(env Env, src string) ([]string, error) {
	return env.Store.Import(src)
}

// ImportTask imports src and installs zapret with it in one run.
func (e EasyInstaller) ImportTask(src string) Task {
	return func(run *Run, out chan<- Message) ([]string, error) {
		status(run, out, StagePersistingResult, "Importing "+src+"...")
		strategies, err := ImportStrategies(e.Env, src)
		if err != nil {
			return nil, err
		}
		if err := e.Run(run, out); err != nil {
			return nil, err
		}
		return strategies, nil
	}
}
