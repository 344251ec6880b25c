package handlers

import (
	"net/http"

	"marketshare/internal/api/models"
	"marketshare/internal/model"

	"github.com/gin-gonic/gin"
)

// ListKinds handles GET /api/v1/kinds
func ListKinds(c *gin.Context) {
	kinds := []models.KindInfo{
		{
			Name:        string(model.KindStandard),
			Description: "Cost based option. Cost is the input price over efficiency plus the non-energy cost; share follows the logit of that cost.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "input",
					Type:        "string",
					Description: "Good consumed by the option. Its market price drives the fuel cost.",
				},
				{
					Name:        "efficiency",
					Type:        "float",
					Description: "Output per unit of input",
					Default:     1.0,
				},
				{
					Name:        "non_energy_cost",
					Type:        "float",
					Description: "Cost per unit of output not tied to the input",
					Default:     0.0,
				},
				{
					Name:        "share_weight",
					Type:        "float",
					Description: "Logit share weight. 0 makes the option unavailable.",
					Default:     1.0,
				},
				{
					Name:        "fixed_output_by_year",
					Type:        "map",
					Description: "Output that does not respond to price, by year",
				},
				{
					Name:        "calibration_by_year",
					Type:        "map",
					Description: "Observed output the share weights are fitted to, by year",
				},
			},
		},
		{
			Name:        string(model.KindProfit),
			Description: "Profit based land production. The land allocator sets its output from the profit rate.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "land_type",
					Type:        "string",
					Description: "Land type the product grows on",
				},
				{
					Name:        "variable_cost",
					Type:        "float",
					Description: "Non-land cost per unit of output",
					Default:     0.0,
				},
				{
					Name:        "cal_yield",
					Type:        "float",
					Description: "Observed yield in calibration periods. 0 means none.",
					Default:     0.0,
				},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"kinds": kinds})
}
