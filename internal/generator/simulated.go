// Package generator produces placeholder portfolio content for a profession.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickfolio-backend/internal/domain"
)

const DefaultLatency = 1500 * time.Millisecond

var ErrEmptyProfession = errors.New("generator: profession is required")

type profile struct {
	skills     []string
	experience []string
	projects   []string
}

var profiles = map[domain.Profession]profile{
	domain.ProfessionDesigner: {
		skills: []string{"UI/UX Design", "Wireframing", "Prototyping", "User Research", "Figma", "Adobe XD", "HTML", "CSS", "JavaScript"},
		experience: []string{
			"Senior Designer at CreativeTech (2020-Present)",
			"UX Designer at DesignStudio (2018-2020)",
			"Junior Designer at WebWorks (2016-2018)",
		},
		projects: []string{
			"E-commerce Redesign - Improved conversion rates by 25%",
			"Mobile App Design - Created intuitive interface for fitness tracking",
			"Branding Project - Developed complete identity for tech startup",
		},
	},
	domain.ProfessionDeveloper: {
		skills: []string{"Go", "TypeScript", "React", "PostgreSQL", "Redis", "Docker", "Kubernetes", "REST APIs", "CI/CD"},
		experience: []string{
			"Senior Software Engineer at CloudScale (2020-Present)",
			"Backend Developer at DataForge (2018-2020)",
			"Junior Developer at WebWorks (2016-2018)",
		},
		projects: []string{
			"Payments Platform - Processed 2M transactions a month with 99.99% uptime",
			"Realtime Dashboard - Streaming metrics for 500+ services",
			"Open Source CLI - Developer tool with 3k GitHub stars",
		},
	},
	domain.ProfessionPhotographer: {
		skills: []string{"Portrait Photography", "Lighting", "Adobe Lightroom", "Photoshop", "Color Grading", "Drone Photography", "Studio Setup"},
		experience: []string{
			"Lead Photographer at Lumen Studio (2019-Present)",
			"Staff Photographer at City Herald (2016-2019)",
			"Assistant Photographer at BrightFrame (2014-2016)",
		},
		projects: []string{
			"Urban Nights - Exhibition of 40 night cityscapes",
			"Brand Campaign - Product shoot for an outdoor apparel launch",
			"Wedding Series - Documentary coverage of 60+ weddings",
		},
	},
	domain.ProfessionWriter: {
		skills: []string{"Copywriting", "Editing", "SEO Writing", "Technical Writing", "Storytelling", "Content Strategy", "Research"},
		experience: []string{
			"Senior Content Writer at WordCraft (2020-Present)",
			"Editor at Morning Ledger (2017-2020)",
			"Staff Writer at Pixel Press (2015-2017)",
		},
		projects: []string{
			"Product Docs Overhaul - Cut support tickets by 30%",
			"Long-form Series - 12-part feature on renewable energy",
			"Brand Voice Guide - Style guide adopted across 4 teams",
		},
	},
	domain.ProfessionMarketer: {
		skills: []string{"Growth Marketing", "SEO", "Google Analytics", "Email Campaigns", "Paid Social", "A/B Testing", "Copywriting"},
		experience: []string{
			"Marketing Manager at GrowthLoop (2020-Present)",
			"Digital Marketer at BrightAds (2018-2020)",
			"Marketing Coordinator at LocalBiz (2016-2018)",
		},
		projects: []string{
			"Launch Campaign - Drove 50k signups in the first month",
			"SEO Program - Tripled organic traffic in a year",
			"Lifecycle Emails - Raised retention by 18%",
		},
	},
	domain.ProfessionOther: {
		skills: []string{"Project Management", "Communication", "Problem Solving", "Collaboration", "Research", "Presentation"},
		experience: []string{
			"Project Lead at Northwind (2020-Present)",
			"Coordinator at Contoso (2017-2020)",
			"Associate at Fabrikam (2015-2017)",
		},
		projects: []string{
			"Process Redesign - Reduced turnaround time by 40%",
			"Community Program - Organized events for 2,000 attendees",
			"Knowledge Base - Centralized documentation for the whole team",
		},
	},
}

// Simulated stands in for a model-backed generator. Output depends only on
// the profession, after a fixed delay.
type Simulated struct {
	latency time.Duration
}

func NewSimulated(latency time.Duration) *Simulated {
	if latency < 0 {
		latency = 0
	}
	return &Simulated{latency: latency}
}

func (g *Simulated) Generate(ctx context.Context, profession string) (*domain.GeneratedContent, error) {
	profession = strings.TrimSpace(profession)
	if profession == "" {
		return nil, ErrEmptyProfession
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("generation cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return Content(profession), nil
}

// Content returns the deterministic content for a profession. Unknown
// professions use the generic profile.
func Content(profession string) *domain.GeneratedContent {
	p, ok := profiles[domain.Profession(strings.ToLower(profession))]
	if !ok {
		p = profiles[domain.ProfessionOther]
	}
	return &domain.GeneratedContent{
		About: fmt.Sprintf("I'm a passionate %s with over 5 years of experience creating innovative solutions. "+
			"I specialize in delivering high-quality work that meets client needs and exceeds expectations.", profession),
		Skills:     strings.Join(p.skills, ", "),
		Experience: strings.Join(p.experience, "\n"),
		Projects:   strings.Join(p.projects, "\n"),
	}
}
