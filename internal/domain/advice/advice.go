// Package advice maps risk tiers onto intervention recommendations and
// follow-up plans. The tables are curated guidance text, keyed by domain and
// tier; they carry severity markers so reports read at a glance.
package advice

import "github.com/edulens/screening/internal/domain/model"

// Recommendations returns the ordered guidance list for a domain at a tier.
// Unknown tiers, including the degraded ones, yield an empty list.
func Recommendations(d model.Domain, level model.RiskLevel) []string {
	tables := map[model.Domain]map[model.RiskLevel][]string{
		model.DomainReading:     readingAdvice,
		model.DomainArithmetic:  arithmeticAdvice,
		model.DomainHandwriting: handwritingAdvice,
	}
	table, ok := tables[d]
	if !ok {
		return nil
	}
	recs := table[level]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Degraded returns the guidance attached to a failed or empty assessment.
func Degraded() []string {
	return []string{"Please ensure all assessment data is complete"}
}

// NextSteps returns the follow-up plan for an overall risk tier.
func NextSteps(level model.RiskLevel) []string {
	steps := nextSteps[level]
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// Combine flattens recommendation lists into one, dropping duplicates while
// preserving first-seen order.
func Combine(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, rec := range list {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

var nextSteps = map[model.RiskLevel][]string{
	model.RiskHigh: {
		"1. Schedule comprehensive professional evaluation (Educational Psychologist)",
		"2. Request formal diagnosis from qualified specialist",
		"3. Develop Individualized Education Plan (IEP)",
		"4. Implement specialized intervention programs",
		"5. Request accommodations (extended time, assistive tech, etc.)",
		"6. Monitor progress with regular reassessment",
		"7. Coordinate with parents/guardians for home support",
	},
	model.RiskMedium: {
		"1. Schedule follow-up assessment in 4-6 weeks",
		"2. Implement targeted intervention strategies",
		"3. Provide supplementary support materials",
		"4. Monitor progress closely",
		"5. Consider consultation with specialist if issues persist",
		"6. Provide recommended accommodations",
		"7. Regular progress monitoring",
	},
	model.RiskLow: {
		"1. Continue current learning approach",
		"2. Regular monitoring and assessments",
		"3. Maintain current support level",
		"4. Provide enrichment activities",
		"5. Follow-up assessment in 6-12 months",
	},
	model.RiskNone: {
		"1. No immediate intervention needed",
		"2. Continue standard curriculum",
		"3. Annual screening recommended",
		"4. Encourage continued learning development",
	},
}

var readingAdvice = map[model.RiskLevel][]string{
	model.RiskNone: {
		"✓ CONTINUE STRONG PROGRESS",
		"✓ Continue evidence-based, structured literacy instruction",
		"✓ Maintain phonemic awareness and phonics practice",
		"✓ Regular reading fluency development (daily guided/independent reading)",
		"✓ Monitor reading comprehension and word recognition",
		"✓ Monthly progress monitoring assessments",
		"✓ HOME: Read together daily for 15-20 minutes",
		"✓ HOME: Discuss stories, ask comprehension questions",
	},
	model.RiskLow: {
		"⚠ MONITOR PROGRESS - Emerging Reading Difficulties",
		"⚠ Implement structured literacy instruction emphasizing phonics",
		"⚠ Phonemic awareness activities: syllable segmentation, rhyming, blending",
		"⚠ Use decodable texts aligned to phonics progression",
		"⚠ Fluency building: repeated reading, guided reading, choral reading",
		"⚠ Provide extra time for reading assignments and tests (1.5x)",
		"⚠ Technology: NaturalReader, Immersive Reader for support",
		"⚠ Progress monitoring 1-2x weekly with targeted interventions",
		"⚠ HOME: Daily phonemic awareness games (10 minutes)",
		"⚠ HOME: Read decodable books aligned to phonics instruction",
		"⚠ Consider evaluation if plateau after 8-10 weeks of intervention",
	},
	model.RiskMedium: {
		"⚠ INTERVENTION NEEDED - Significant Reading Difficulties Present",
		"⚠ URGENT: Formal dyslexia assessment by qualified evaluator",
		"⚠ Implement Structured Literacy (Orton-Gillingham based) instruction",
		"⚠ Phonemic awareness foundation: phoneme isolation, deletion, substitution",
		"⚠ Systematic phonics: explicit letter-sound correspondence instruction",
		"⚠ Guided oral reading with teacher feedback 3-4x per week minimum",
		"⚠ Use controlled decodable text at instructional level",
		"⚠ Accommodations: Extra time (1.5-2x), large print, reduced clutter",
		"⚠ Text-to-speech tools: Immersive Reader, Epic!, NaturalReader",
		"⚠ Progress monitoring 1-2x weekly with fluency, comprehension checks",
		"⚠ HOME: Daily structured phonics practice (15-20 minutes)",
		"⚠ Refer to Reading Specialist if no improvement after 8 weeks intervention",
	},
	model.RiskHigh: {
		"🔴 INTENSIVE INTERVENTION REQUIRED - Significant Dyslexia Risk",
		"🔴 PRIORITY: Comprehensive dyslexia evaluation by reading specialist",
		"🔴 Request IEP evaluation for Special Education services immediately",
		"🔴 Request 504 Plan if not IEP eligible (legally required accommodations)",
		"🔴 1:1 intensive instruction 4-5x per week MINIMUM (60-90 minutes total)",
		"🔴 Implement Orton-Gillingham or similar structured literacy program",
		"🔴 Guided oral reading 5+ times per week with corrective feedback",
		"🔴 ACCOMMODATIONS: Unlimited time on reading/testing, alternative formats",
		"🔴 All texts available in audiobook/digital format with text-to-speech",
		"🔴 Speech-to-text for writing (Dragon NaturallySpeaking, Windows Dictation)",
		"🔴 Separate quiet testing environment; breaks allowed",
		"🔴 SPECIALIST TEAM: Reading Specialist, Special Education Teacher, Psychologist",
		"🔴 HOME: Daily structured literacy practice with multi-sensory approach (20-30 min)",
		"🔴 ESCALATE: Review progress every 2-3 weeks; adjust intervention intensity",
	},
}

var arithmeticAdvice = map[model.RiskLevel][]string{
	model.RiskNone: {
		"✓ CONTINUE STRONG PROGRESS",
		"✓ Continue evidence-based math curriculum",
		"✓ Maintain multisensory math instruction techniques",
		"✓ Regular formative assessment (monthly progress monitoring)",
		"✓ Encourage problem-solving and mathematical reasoning",
		"✓ HOME: Play strategy games (Uno, dominoes, dice games)",
		"✓ HOME: Real-world math applications (cooking, shopping, sports)",
	},
	model.RiskLow: {
		"⚠ MONITOR PROGRESS - Emerging Indicators Present",
		"⚠ Implement Concrete-Representational-Abstract (CRA) approach",
		"⚠ Use manipulatives: base-ten blocks, number lines, Cuisenaire rods",
		"⚠ Practice number sense: subitizing, number bonds, tens frames",
		"⚠ Strategic drill & practice: 5-10 minutes daily with varied formats",
		"⚠ Provide extra time on math assignments/tests (1.5x-2x)",
		"⚠ Use graph paper for problem organization",
		"⚠ Technology: Khan Academy, Prodigy Education for adaptive practice",
		"⚠ HOME: Daily 10-15 minute practice with real-world applications",
		"⚠ Consider evaluation if no improvement after 8 weeks",
	},
	model.RiskMedium: {
		"⚠ INTERVENTION NEEDED - Significant Difficulties Present",
		"⚠ URGENT: Conduct/obtain formal dyscalculia assessment",
		"⚠ Implement intensive CRA (Concrete-Representational-Abstract) instruction",
		"⚠ Use physical manipulatives daily: blocks, coins, tens frames, rods",
		"⚠ Number sense foundation: subitizing, quantity relationships, counting",
		"⚠ Accommodations: Extra time (1.5-2x), number lines, multiplication tables",
		"⚠ Allow calculator for complex problems; use graph paper for organization",
		"⚠ Separate testing environment to reduce anxiety",
		"⚠ Technology: Mathway (step-by-step), Desmos (visual graphing)",
		"⚠ HOME: Real-world practice - cooking (fractions), shopping (money)",
		"⚠ Refer to Learning Disabilities Specialist if plateau after 8+ weeks",
		"⚠ Monitor anxiety levels - consider school psychologist consultation",
	},
	model.RiskHigh: {
		"🔴 INTENSIVE INTERVENTION REQUIRED - Significant Dyscalculia Risk",
		"🔴 PRIORITY: Comprehensive psychoeducational evaluation by specialist",
		"🔴 Request IEP evaluation or 504 Plan development immediately",
		"🔴 1:1 or small group sessions 3-4x per week MINIMUM",
		"🔴 Heavy use of manipulatives: base-ten blocks, rekenrek, fraction pieces",
		"🔴 Foundation building: subitizing (recognizing 1-5 instantly)",
		"🔴 Multisensory fact instruction: concrete → visual → abstract progression",
		"🔴 ACCOMMODATIONS: Unlimited time on assessments, calculator access",
		"🔴 Modified curriculum focused on essential math concepts only",
		"🔴 Alternative assessments: verbal, hands-on demonstrations",
		"🔴 SPECIALIST REFERRALS: Educational Psychologist, LD Specialist, Special Ed Teacher",
		"🔴 HOME: Explain dyscalculia is neurological, not laziness/low ability",
		"🔴 HOME: Consistent 10-15 min daily practice in quiet environment",
		"🔴 ESCALATE: Monitor specialist response; adjust plan every 4 weeks",
	},
}

var handwritingAdvice = map[model.RiskLevel][]string{
	model.RiskNone: {
		"✓ CONTINUE STRONG PROGRESS",
		"✓ Continue multisensory handwriting instruction",
		"✓ Maintain regular handwriting practice (10-15 minutes daily)",
		"✓ Promote fine motor skill development through play and activities",
		"✓ Monitor writing fluency, legibility, speed development",
		"✓ HOME: Daily free writing or journaling activity",
		"✓ HOME: Fine motor games: building, crafts, scissors practice",
	},
	model.RiskLow: {
		"⚠ MONITOR PROGRESS - Emerging Motor Difficulties",
		"⚠ Implement multisensory handwriting instruction (see-say-trace)",
		"⚠ Fine motor activities: squeezing, threading, finger games (10-15 min daily)",
		"⚠ Proper posture and pencil grip instruction with visual supports",
		"⚠ Reduce writing demands: shorten assignments or allow alternatives",
		"⚠ Extra time for written work (1.5x) and tests",
		"⚠ Keyboard access: allow typing as alternative to handwriting",
		"⚠ Progress monitoring: handwriting legibility and speed assessment 2x monthly",
		"⚠ HOME: Fine motor activities: squishing play dough, threading beads",
		"⚠ HOME: Sandpaper letter tracing with multiple fingers/textures",
		"⚠ Consider evaluation if motor skills plateau after 8 weeks",
	},
	model.RiskMedium: {
		"⚠ INTERVENTION NEEDED - Significant Motor/Writing Difficulties",
		"⚠ URGENT: Formal dysgraphia assessment by occupational therapist/specialist",
		"⚠ 2-3x weekly occupational therapy or specialized writing intervention",
		"⚠ Multisensory handwriting with texture: sandpaper letters, shaving cream, sand",
		"⚠ Explicit pencil grip instruction with adaptive grips if needed",
		"⚠ Systematic progression: isolated letters → letter combinations → words",
		"⚠ ACCOMMODATIONS: Extra time (1.5-2x) for all written assignments/tests",
		"⚠ Keyboard access: typed assignments acceptable; provide typing instruction",
		"⚠ Speech-to-text for compositions: Dragon, Windows Dictation, Google Docs",
		"⚠ Graphic organizers to structure writing without handwriting burden",
		"⚠ HOME: Daily fine motor practice (15 minutes): manipulation, sensory activities",
		"⚠ Refer to OT if motor skills not improving after 8 weeks",
	},
	model.RiskHigh: {
		"🔴 INTENSIVE INTERVENTION REQUIRED - Significant Dysgraphia Risk",
		"🔴 PRIORITY: Comprehensive evaluation by occupational therapist specialist",
		"🔴 Request IEP evaluation for Special Education services immediately",
		"🔴 1:1 occupational therapy 4-5x per week (30-60 minutes per session)",
		"🔴 Specialized motor remediation program addressing foundational skills",
		"🔴 Intensive multisensory handwriting: sandpaper, shaving cream, wet sand daily",
		"🔴 Bilateral coordination activities: both hands coordinated movements",
		"🔴 ACCOMMODATIONS: Unlimited time for handwritten work",
		"🔴 Alternative to handwriting: Speech-to-text PRIMARY method for expressing ideas",
		"🔴 No penalties for spelling, punctuation, legibility in content assessment",
		"🔴 Alternative assessments: oral responses, recorded explanations, drawings",
		"🔴 SPECIALIST TEAM: Occupational Therapist, Special Education Teacher, Psychologist",
		"🔴 HOME: Daily 20-30 minute fine motor practice with multi-sensory approach",
		"🔴 ESCALATE: Occupational therapy progress review every 2-3 weeks",
	},
}
