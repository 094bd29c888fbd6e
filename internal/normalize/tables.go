package normalize

import (
	"regexp"

	"github.com/jobpulse/backend/internal/domain"
)

// skillVocabulary holds the canonical spellings of every recognized
// technology/skill term. Matching is case-insensitive on word boundaries;
// the canonical spelling is what ends up on the record.
var skillVocabulary = []string{
	// Languages
	"Python", "JavaScript", "TypeScript", "Java", "Go", "Golang", "Rust", "C++", "C#",
	"Scala", "Kotlin", "Swift", "Ruby", "PHP", "R", "MATLAB", "Bash", "Shell",
	// Frontend
	"React", "React.js", "Next.js", "Vue", "Vue.js", "Angular", "Svelte",
	"HTML", "CSS", "Tailwind", "SASS", "Redux", "GraphQL", "REST API",
	"WebSockets", "Webpack", "Vite",
	// Backend
	"Node.js", "Django", "FastAPI", "Flask", "Spring Boot", "Express", "Rails",
	"NestJS", "gRPC", "Microservices", "REST", "API Design",
	// Databases
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Cassandra",
	"DynamoDB", "SQLite", "Oracle", "SQL Server", "BigQuery", "Snowflake",
	"Redshift", "ClickHouse", "Kafka", "RabbitMQ",
	// Cloud & DevOps
	"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform", "Ansible",
	"CI/CD", "Jenkins", "GitHub Actions", "ArgoCD", "Helm", "Linux",
	"CloudFormation", "Pulumi", "Prometheus", "Grafana", "Datadog", "PagerDuty",
	// ML/AI
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Keras",
	"scikit-learn", "NLP", "Computer Vision", "LLM", "Transformers",
	"Hugging Face", "OpenAI", "BERT", "GPT", "RAG", "MLOps", "Feature Engineering",
	"Spark", "Hadoop", "Airflow", "dbt", "Pandas", "NumPy",
	// Architecture
	"Distributed Systems", "System Design", "Event-Driven Architecture",
	"Domain-Driven Design", "SOLID", "Design Patterns", "SOA", "Serverless",
	// Practices
	"Agile", "Scrum", "TDD", "BDD", "Code Review", "Open Source",
	// Tools
	"Git", "JIRA", "Confluence", "Figma",
}

type skillPattern struct {
	canonical string
	re        *regexp.Regexp
}

var skillPatterns = buildSkillPatterns()

func buildSkillPatterns() []skillPattern {
	patterns := make([]skillPattern, 0, len(skillVocabulary))
	for _, skill := range skillVocabulary {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
		patterns = append(patterns, skillPattern{canonical: skill, re: re})
	}
	return patterns
}

type rolePhrases struct {
	category domain.RoleCategory
	phrases  []string
}

// roleTable is checked in order; the first matching phrase wins, so more
// specific categories (ML/AI, Forward Deployed) sit above the generic
// Software Engineer bucket.
var roleTable = []rolePhrases{
	{domain.RoleMLAI, []string{
		"machine learning", "ml engineer", "ai engineer", "deep learning",
		"data science", "nlp engineer", "computer vision", "mlops",
		"research scientist", "applied scientist", "llm", "generative ai",
	}},
	{domain.RoleDataEngineer, []string{
		"data engineer", "etl", "data pipeline", "data platform",
		"analytics engineer", "big data",
	}},
	{domain.RoleDataScientist, []string{
		"data scientist", "analyst", "business intelligence",
		"quantitative analyst", "statistician",
	}},
	{domain.RoleForwardDeployed, []string{
		"forward deployed", "solutions engineer", "field engineer",
		"customer engineer", "deployment strategist",
	}},
	{domain.RoleDevOps, []string{
		"devops", "platform engineer", "sre", "site reliability",
		"infrastructure engineer", "cloud engineer", "devsecops",
		"release engineer", "build engineer",
	}},
	{domain.RoleFrontend, []string{
		"frontend", "front-end", "front end", "ui engineer",
		"react developer", "angular developer", "vue developer",
		"web developer", "ui/ux engineer",
	}},
	{domain.RoleBackend, []string{
		"backend", "back-end", "back end", "api engineer",
		"server-side", "java developer", "python developer",
		"golang engineer", "microservices engineer",
	}},
	{domain.RoleFullstack, []string{
		"full stack", "fullstack", "full-stack",
		"full stack developer", "full stack engineer",
	}},
	{domain.RoleProductProgram, []string{
		"product manager", "program manager", "technical program manager",
		"tpm", "product management", "product owner",
	}},
	{domain.RoleEngManager, []string{
		"engineering manager", "tech lead", "technical lead",
		"team lead", "staff engineer", "principal engineer",
		"vp of engineering", "director of engineering", "head of engineering",
	}},
	{domain.RoleSoftwareEngineer, []string{
		"software engineer", "software developer", "swe",
		"software development engineer", "sde",
	}},
}

type experiencePhrases struct {
	level   domain.ExperienceLevel
	phrases []string
}

// experienceTable order is a tie-break: "10+ years" classifies as Staff
// because Staff is checked before Principal.
var experienceTable = []experiencePhrases{
	{domain.ExperienceEntry, []string{
		"junior", "entry", "entry-level", "associate", "new grad",
		"0-2 years", "1+ year", "fresher", "intern",
	}},
	{domain.ExperienceMid, []string{
		"mid", "mid-level", "intermediate", "2+ years", "3+ years",
		"2-5 years", "3-5 years",
	}},
	{domain.ExperienceSenior, []string{
		"senior", "sr.", "sr ", "5+ years", "6+ years", "7+ years",
		"5-8 years", "experienced",
	}},
	{domain.ExperienceStaff, []string{
		"staff engineer", "staff software", "staff level",
		"8+ years", "9+ years", "10+ years",
	}},
	{domain.ExperiencePrincipal, []string{
		"principal", "distinguished", "fellow",
		"10+ years", "12+ years", "15+ years",
	}},
	{domain.ExperienceManager, []string{
		"manager", "director", "vp", "head of", "lead",
	}},
}

// Region signal sets. US signals are always checked first so a string
// containing both resolves to US.
var usSignals = []string{
	"united states", "usa", "u.s.", "u.s.a", "us", "california", "new york",
	"texas", "washington", "seattle", "san francisco", "new york city",
	"chicago", "boston", "austin", "remote us",
}

var indiaSignals = []string{
	"india", "bengaluru", "bangalore", "mumbai", "hyderabad",
	"chennai", "pune", "delhi", "ncr", "noida", "gurgaon",
	"gurugram", "kolkata", "ahmedabad", "remote india",
}

var remoteSignals = []string{"remote", "work from home", "wfh", "distributed"}

var onsiteSignals = []string{"on-site", "onsite", "in-office", "in office"}
