// Package agent implements the research pipeline as a graph of four steps:
//
//	search_research -> [analyze_video] -> create_report -> create_podcast
//
// Video analysis runs only when the input carries a video URL. Each step reads
// the current ResearchState and returns a patch with the fields it produced;
// a field may be written only once per run.
//
//	a := agent.New(agent.WithOutputDir("out"))
//	out, err := a.Run(ctx, agent.Input{Topic: "quantum computing"})
//	if err != nil {
//		return err
//	}
//	fmt.Println(*out.Report)
//	fmt.Println("audio:", *out.PodcastFilename)
package agent
