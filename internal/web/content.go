package web

// Site copy that is not part of the catalog.
var (
	Tagline = "Software Engineer & Full-Stack Developer"

	Roles = []string{
		"Software Engineer",
		"Full-Stack Developer",
		"IoT Enthusiast",
		"AI Explorer",
	}

	AboutMe = []string{
		`I'm a Software Engineer finishing a B.Sc. in Information Technology at the
		Sri Lanka Institute of Information Technology (SLIIT). I like building things
		end to end, from responsive web front ends to the services and devices behind them.`,

		`As a Software Engineer Intern at OXZON AI I work on production React and
		Node.js code and on machine learning features, which has pushed me to care
		about testing, reviews and shipping small changes often.`,

		`My final year project, a real-time vehicle horn detection and alert system,
		pairs embedded hardware with an audio classifier to help drivers with hearing
		impairments notice horns around them.`,
	}

	ProjectsIntro = `A collection of projects showcasing my skills in web development,
	IoT systems, and AI applications. Each project represents a unique challenge
	and learning experience.`
)

type ContactLink struct {
	Label string
	Value string
	Link  string
}

var ContactInfo = []ContactLink{
	{Label: "Email", Value: "prabodhawith@gmail.com", Link: "mailto:prabodhawith@gmail.com"},
	{Label: "Phone", Value: "+94 769782381", Link: "tel:+94769782381"},
	{Label: "Location", Value: "Katuneriya, Sri Lanka"},
}

var SocialLinks = []ContactLink{
	{Label: "GitHub", Value: "IT21278280", Link: "https://github.com/IT21278280"},
	{Label: "LinkedIn", Value: "Rusith Fernando", Link: "https://www.linkedin.com/in/rusith-fernando-aaa77a215/"},
}

const (
	contactSuccess   = "Message sent successfully! I'll get back to you soon."
	rateLimitMessage = "Too many messages. Please wait a minute and try again."
)
